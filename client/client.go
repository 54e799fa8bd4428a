package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"XingHe-API/auth"
	"XingHe-API/model"
	"XingHe-API/protocol"
	"XingHe-API/registry"
	"XingHe-API/utils"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

const heartbeatInterval = 30 * time.Second

// Callbacks 客户端回调。礼物展示位变化走 OnGiftActive（清空时为 nil），
// 其余事件各走各的回调，未设置的回调被跳过。
type Callbacks struct {
	OnRoom       func(*model.LiveSession)
	OnSession    func(*protocol.SessionData)
	OnChat       func(*model.ChatMessage)
	OnGiftActive func(*model.GiftEvent)
}

// Client 指令通道客户端。一个 Client 对应一个频道内的一个连接。
type Client struct {
	serverAddr string
	identity   *auth.Identity
	avatars    *registry.AvatarRegistry
	queue      *GiftQueue
	callbacks  Callbacks

	display   time.Duration
	channelID string
	role      string
	hostID    string

	conn      *websocket.Conn
	writeMu   sync.Mutex
	done      chan struct{}
	connected bool
	mutex     sync.RWMutex
}

func NewClient(serverAddr string, identity *auth.Identity, avatars *registry.AvatarRegistry, display time.Duration, callbacks Callbacks) *Client {
	if avatars == nil {
		avatars = registry.NewAvatarRegistry()
	}
	c := &Client{
		serverAddr: serverAddr,
		identity:   identity,
		avatars:    avatars,
		display:    display,
		callbacks:  callbacks,
		done:       make(chan struct{}),
	}
	c.queue = NewGiftQueue(display, callbacks.OnGiftActive)
	return c
}

// Join 建立连接并入房。role 为 host 时视为开播。
func (c *Client) Join(channelID, role string) error {
	u := url.URL{
		Scheme: "ws",
		Host:   c.serverAddr,
		Path:   "/server/ws",
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("连接服务端失败: %w", err)
	}

	done := make(chan struct{})
	c.mutex.Lock()
	c.conn = conn
	c.connected = true
	c.channelID = channelID
	c.role = role
	c.done = done
	// 重连时换一个新队列，旧队列的计时器已随断开停止
	c.queue = NewGiftQueue(c.display, c.callbacks.OnGiftActive)
	c.mutex.Unlock()

	join := &protocol.JoinData{
		ChannelID: channelID,
		UserID:    c.identity.UserID,
		UserName:  c.identity.DisplayName,
		Avatar:    c.identity.Avatar,
		Role:      role,
	}
	if err := c.writeRequest(protocol.ReqJoin, join); err != nil {
		c.Close()
		return err
	}

	go c.heartbeat(done)
	go c.readMessages(conn, done)

	return nil
}

func (c *Client) IsConnected() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.connected
}

// Done 连接断开后关闭
func (c *Client) Done() <-chan struct{} {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.done
}

// Avatars 展示信息缓存
func (c *Client) Avatars() *registry.AvatarRegistry {
	return c.avatars
}

// Queue 礼物队列
func (c *Client) Queue() *GiftQueue {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.queue
}

// SendGift 发送礼物。本地先入队回显，再经指令通道广播；
// 事件ID在发送时生成，回传的自身回显靠它去重之前先被身份过滤掉。
func (c *Client) SendGift(giftName, targetName string) error {
	gift, ok := model.FindGift(giftName)
	if !ok {
		return fmt.Errorf("未知礼物: %s", giftName)
	}

	c.mutex.RLock()
	channelID, hostID := c.channelID, c.hostID
	c.mutex.RUnlock()

	ev := &model.GiftEvent{
		EventID:    ulid.Make().String(),
		ChannelID:  channelID,
		SenderID:   c.identity.UserID,
		SenderName: model.SenderNameOrDefault(c.identity.DisplayName),
		TargetName: targetName,
		GiftName:   gift.Name,
		Icon:       gift.Icon,
		IsHost:     hostID != "" && c.identity.UserID == hostID,
		Timestamp:  time.Now(),
	}

	// 本地回显不等网络往返
	c.Queue().Enqueue(ev)

	return c.writeRequest(protocol.ReqGift, ev)
}

// SendChat 发送聊天
func (c *Client) SendChat(text string) error {
	return c.writeRequest(protocol.ReqChat, map[string]string{"text": text})
}

// End 主播下播
func (c *Client) End() error {
	return c.writeRequest(protocol.ReqEnd, nil)
}

func (c *Client) writeRequest(reqType string, data interface{}) error {
	// 重连会换连接，发送走锁下的快照
	c.mutex.RLock()
	conn, connected := c.conn, c.connected
	c.mutex.RUnlock()
	if !connected || conn == nil {
		return fmt.Errorf("连接未建立")
	}

	raw, err := protocol.NewRequest(reqType, data)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, raw)
}

func (c *Client) heartbeat(done chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.writeRequest(protocol.ReqHeartbeat, nil); err != nil {
				utils.Logger.Errorf("频道 %s 发送心跳失败: %v", c.channelID, err)
				c.closeSession(done)
				return
			}
		case <-done:
			return
		}
	}
}

func (c *Client) readMessages(conn *websocket.Conn, done chan struct{}) {
	defer c.closeSession(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
			default:
				utils.Logger.Errorf("频道 %s 读取消息失败: %v", c.channelID, err)
			}
			return
		}
		c.handleResult(data)
	}
}

// handleResult 分发服务端结果。坏的载荷记日志后丢弃，不影响队列。
func (c *Client) handleResult(data []byte) {
	resType, resData, err := protocol.ParseResult(data)
	if err != nil {
		utils.Logger.Warnf("频道 %s 丢弃非法结果: %v", c.channelID, err)
		return
	}

	switch resType {
	case protocol.ResultRoom:
		var session model.LiveSession
		if err := json.Unmarshal([]byte(resData.Raw), &session); err != nil {
			utils.Logger.Warnf("频道 %s 解析会话快照失败: %v", c.channelID, err)
			return
		}
		c.mutex.Lock()
		c.hostID = session.HostID
		c.mutex.Unlock()
		c.avatars.Put(session.HostID, session.HostName, session.HostAvatar)
		if c.callbacks.OnRoom != nil {
			c.callbacks.OnRoom(&session)
		}

	case protocol.ResultSession:
		var update protocol.SessionData
		if err := json.Unmarshal([]byte(resData.Raw), &update); err != nil {
			utils.Logger.Warnf("频道 %s 解析会话变更失败: %v", c.channelID, err)
			return
		}
		if c.callbacks.OnSession != nil {
			c.callbacks.OnSession(&update)
		}

	case protocol.ResultGift:
		ev, err := protocol.ParseGiftEvent(resData)
		if err != nil {
			utils.Logger.Warnf("频道 %s 丢弃坏的礼物指令: %v", c.channelID, err)
			return
		}
		// 自己发出的回显已经本地入队，这里按发送者身份过滤
		if ev.SenderID == c.identity.UserID {
			return
		}
		c.avatars.Put(ev.SenderID, ev.SenderName, "")
		c.Queue().Enqueue(ev)

	case protocol.ResultChat:
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(resData.Raw), &msg); err != nil {
			utils.Logger.Warnf("频道 %s 解析聊天失败: %v", c.channelID, err)
			return
		}
		c.avatars.Put(msg.UserID, msg.UserName, msg.Avatar)
		if c.callbacks.OnChat != nil {
			c.callbacks.OnChat(&msg)
		}
		// 聊天兜底通道：没收到礼物指令时靠这里补，事件ID去重保证只展示一次。
		// 聊天消息不带 is_host，按会话快照里的主播ID补齐
		if ev, ok := protocol.GiftFromChat(resData); ok && ev.SenderID != c.identity.UserID {
			c.mutex.RLock()
			ev.ChannelID = c.channelID
			ev.IsHost = ev.SenderID != "" && ev.SenderID == c.hostID
			c.mutex.RUnlock()
			c.Queue().Enqueue(ev)
		}

	case protocol.ResultHeartbeat:
		// 心跳回应无内容
	}
}

// Close 断开连接并停止队列计时器
func (c *Client) Close() {
	c.mutex.RLock()
	done := c.done
	c.mutex.RUnlock()
	c.closeSession(done)
}

// closeSession 关闭指定连接对应的会话。重连后残留的旧协程
// 带着旧的 done 进来时直接返回，不得误杀新连接。
func (c *Client) closeSession(done chan struct{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.connected || c.done != done {
		return
	}
	c.connected = false
	close(c.done)

	if c.conn != nil {
		c.conn.Close()
	}
	c.queue.Stop()
}
