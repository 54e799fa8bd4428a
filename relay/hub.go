package relay

import (
	"fmt"
	"sync"

	"XingHe-API/model"
	"XingHe-API/protocol"
	"XingHe-API/registry"
	"XingHe-API/utils"
)

const broadcastBuffer = 256

// participant 房间内的一个连接
type participant struct {
	sessionID string
	channelID string
	userID    string
	userName  string
	avatar    string
	role      string

	send chan *protocol.Result
	done chan struct{}
}

func (p *participant) isHost() bool {
	return p.role == protocol.RoleHost
}

// Hub 频道房间管理。观众进出房与连接生命周期一一对应：
// 注册时计数加一，连接断开时计数减一，不存在重复进房。
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
	store *registry.Store
}

type room struct {
	mu        sync.RWMutex
	channelID string
	clients   map[string]*participant
	closed    bool
	broadcast chan *protocol.Result
	done      chan struct{}
}

func NewHub(store *registry.Store) *Hub {
	return &Hub{
		rooms: make(map[string]*room),
		store: store,
	}
}

func newRoom(channelID string) *room {
	r := &room{
		channelID: channelID,
		clients:   make(map[string]*participant),
		broadcast: make(chan *protocol.Result, broadcastBuffer),
		done:      make(chan struct{}),
	}
	go r.fanout()
	return r
}

// 房间内广播，包含发送者自身的回显，由客户端自行过滤。
// broadcast 不关闭，投递方随时可能还持有房间引用，回收只停协程。
func (r *room) fanout() {
	for {
		select {
		case res := <-r.broadcast:
			r.mu.RLock()
			for _, p := range r.clients {
				select {
				case p.send <- res:
				default:
					utils.Logger.Warnf("频道 %s 参与者 %s 发送队列已满，丢弃消息", r.channelID, p.sessionID)
				}
			}
			r.mu.RUnlock()
		case <-r.done:
			return
		}
	}
}

func (r *room) isClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Join 参与者进入房间。观众触发一次进房计数并向房间推送会话变更。
func (h *Hub) Join(p *participant) error {
	for {
		h.mu.Lock()
		r, exists := h.rooms[p.channelID]
		if !exists {
			r = newRoom(p.channelID)
			h.rooms[p.channelID] = r
		}
		h.mu.Unlock()

		r.mu.Lock()
		if r.closed {
			// 撞上正在回收的房间，换新房间重试
			r.mu.Unlock()
			continue
		}
		if _, dup := r.clients[p.sessionID]; dup {
			r.mu.Unlock()
			return fmt.Errorf("会话 %s 已在频道 %s 中", p.sessionID, p.channelID)
		}
		r.clients[p.sessionID] = p
		r.mu.Unlock()
		break
	}

	if !p.isHost() {
		count, err := h.store.Join(p.channelID)
		if err != nil {
			utils.Logger.Errorf("频道 %s 进房计数失败: %v", p.channelID, err)
		} else {
			h.broadcastSession(p.channelID, model.StatusLive, count)
		}
	}

	return nil
}

// Leave 参与者离开。观众减一次计数；主播离开视为下播。
func (h *Hub) Leave(p *participant) {
	h.mu.Lock()
	r, exists := h.rooms[p.channelID]
	h.mu.Unlock()
	if !exists {
		return
	}

	r.mu.Lock()
	if _, ok := r.clients[p.sessionID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.clients, p.sessionID)
	remaining := len(r.clients)
	r.mu.Unlock()

	close(p.done)

	if p.isHost() {
		h.endSession(p.channelID)
	} else {
		count, err := h.store.Leave(p.channelID)
		if err != nil {
			utils.Logger.Errorf("频道 %s 离房计数失败: %v", p.channelID, err)
		} else if session, err := h.store.GetSession(p.channelID); err == nil && session.IsLive() {
			h.broadcastSession(p.channelID, model.StatusLive, count)
		}
	}

	if remaining == 0 {
		h.teardownRoom(p.channelID, r)
	}
}

// teardownRoom 回收空房间。双锁下再次确认为空，
// 期间有新参与者进入则放弃回收；标记关闭与摘除在同一临界区完成。
func (h *Hub) teardownRoom(channelID string, r *room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.rooms[channelID]; !ok || cur != r {
		return
	}

	r.mu.Lock()
	if len(r.clients) > 0 {
		r.mu.Unlock()
		return
	}
	r.closed = true
	delete(h.rooms, channelID)
	r.mu.Unlock()

	close(r.done)
}

// EndSession 主播主动下播
func (h *Hub) EndSession(channelID string) {
	h.endSession(channelID)
}

func (h *Hub) endSession(channelID string) {
	if err := h.store.EndSession(channelID); err != nil {
		utils.Logger.Errorf("频道 %s 结束会话失败: %v", channelID, err)
		return
	}
	h.broadcastSession(channelID, model.StatusEnded, 0)
}

// Broadcast 向房间投递一条结果
func (h *Hub) Broadcast(channelID string, res *protocol.Result) error {
	h.mu.RLock()
	r, exists := h.rooms[channelID]
	h.mu.RUnlock()
	if !exists || r.isClosed() {
		return fmt.Errorf("频道 %s 不存在", channelID)
	}

	select {
	case r.broadcast <- res:
		return nil
	default:
		return fmt.Errorf("频道 %s 广播队列已满", channelID)
	}
}

// BroadcastGift 礼物走双通道：礼物指令 + 携带同一事件ID的聊天兜底
func (h *Hub) BroadcastGift(ev *model.GiftEvent) error {
	if err := h.Broadcast(ev.ChannelID, protocol.NewResultOK(protocol.ResultGift, ev)); err != nil {
		return err
	}

	gift, _ := model.FindGift(ev.GiftName)
	fallback := &model.ChatMessage{
		ChannelID:   ev.ChannelID,
		UserID:      ev.SenderID,
		UserName:    ev.SenderName,
		Text:        protocol.FormatGiftChatText(ev.SenderName, gift),
		Timestamp:   ev.Timestamp,
		GiftEventID: ev.EventID,
		GiftName:    ev.GiftName,
	}
	return h.Broadcast(ev.ChannelID, protocol.NewResultOK(protocol.ResultChat, fallback))
}

func (h *Hub) broadcastSession(channelID, status string, viewCount int) {
	res := protocol.NewResultOK(protocol.ResultSession, &protocol.SessionData{
		ChannelID: channelID,
		Status:    status,
		ViewCount: viewCount,
	})
	if err := h.Broadcast(channelID, res); err != nil {
		utils.Logger.Debugf("频道 %s 会话变更广播失败: %v", channelID, err)
	}
}

// RoomClientCount 房间当前连接数（含主播）
func (h *Hub) RoomClientCount(channelID string) int {
	h.mu.RLock()
	r, exists := h.rooms[channelID]
	h.mu.RUnlock()
	if !exists {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// ActiveRooms 有连接的频道列表
func (h *Hub) ActiveRooms() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	channels := make([]string, 0, len(h.rooms))
	for channelID := range h.rooms {
		channels = append(channels, channelID)
	}
	return channels
}
