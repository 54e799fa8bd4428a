package client

// RecentSet 有界的最近见过集合，按加入顺序淘汰最旧记录。
// 自身不加锁，由持有方保证串行访问。
type RecentSet struct {
	capacity int
	order    []string
	seen     map[string]struct{}
}

func NewRecentSet(capacity int) *RecentSet {
	if capacity <= 0 {
		capacity = 1
	}
	return &RecentSet{
		capacity: capacity,
		seen:     make(map[string]struct{}, capacity),
	}
}

// Add 记录一个ID。已存在时返回 false。
func (s *RecentSet) Add(id string) bool {
	if _, exists := s.seen[id]; exists {
		return false
	}

	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}
	s.order = append(s.order, id)
	s.seen[id] = struct{}{}
	return true
}

// Contains 是否在窗口内
func (s *RecentSet) Contains(id string) bool {
	_, exists := s.seen[id]
	return exists
}

func (s *RecentSet) Len() int {
	return len(s.order)
}
