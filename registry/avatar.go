package registry

import "sync"

// AvatarRegistry 用户展示信息缓存，userID -> 头像/昵称。
// 后写覆盖先写，不做淘汰，生命周期等于持有它的客户端。
// 显式注入使用方，不做包级单例。
type AvatarRegistry struct {
	mu      sync.RWMutex
	avatars map[string]string
	names   map[string]string
}

func NewAvatarRegistry() *AvatarRegistry {
	return &AvatarRegistry{
		avatars: make(map[string]string),
		names:   make(map[string]string),
	}
}

// Put 记录用户展示信息，空值不覆盖已有记录
func (r *AvatarRegistry) Put(userID, name, avatar string) {
	if userID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if name != "" {
		r.names[userID] = name
	}
	if avatar != "" {
		r.avatars[userID] = avatar
	}
}

func (r *AvatarRegistry) Name(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[userID]
	return name, ok
}

func (r *AvatarRegistry) Avatar(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	avatar, ok := r.avatars[userID]
	return avatar, ok
}

func (r *AvatarRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
