package client_test

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"XingHe-API/auth"
	"XingHe-API/client"
	"XingHe-API/model"
	"XingHe-API/protocol"
	"XingHe-API/registry"
	"XingHe-API/relay"

	"github.com/gin-gonic/gin"
)

// 起一个真实的中继服务，返回客户端可拨号的地址
func newTestServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := registry.Open(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := registry.NewStore(db)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}

	hub := relay.NewHub(store)
	handler := relay.NewHandler(hub, store, "http://example.com")

	router := gin.New()
	router.GET("/server/ws", handler.WebSocket)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

// eventRecorder 记录礼物展示位的每次激活
type eventRecorder struct {
	mu     sync.Mutex
	shown  []*model.GiftEvent
	joined chan struct{}
	once   sync.Once
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{joined: make(chan struct{})}
}

func (r *eventRecorder) callbacks() client.Callbacks {
	return client.Callbacks{
		OnRoom: func(*model.LiveSession) {
			r.once.Do(func() { close(r.joined) })
		},
		OnGiftActive: func(ev *model.GiftEvent) {
			if ev == nil {
				return
			}
			r.mu.Lock()
			r.shown = append(r.shown, ev)
			r.mu.Unlock()
		},
	}
}

func (r *eventRecorder) waitJoined(t *testing.T) {
	t.Helper()
	select {
	case <-r.joined:
	case <-time.After(3 * time.Second):
		t.Fatalf("入房超时")
	}
}

func (r *eventRecorder) snapshot() []*model.GiftEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.GiftEvent(nil), r.shown...)
}

func newTestClient(t *testing.T, addr, userID, name string, rec *eventRecorder) *client.Client {
	t.Helper()
	identity := &auth.Identity{UserID: userID, DisplayName: name}
	c := client.NewClient(addr, identity, nil, 100*time.Millisecond, rec.callbacks())
	t.Cleanup(c.Close)
	return c
}

func TestClientGiftShownExactlyOncePerSide(t *testing.T) {
	addr := newTestServer(t)

	hostRec := newEventRecorder()
	host := newTestClient(t, addr, "host1", "主播", hostRec)
	if err := host.Join("room1", protocol.RoleHost); err != nil {
		t.Fatalf("host join: %v", err)
	}
	hostRec.waitJoined(t)

	senderRec := newEventRecorder()
	sender := newTestClient(t, addr, "a1", "小明", senderRec)
	if err := sender.Join("room1", protocol.RoleAudience); err != nil {
		t.Fatalf("sender join: %v", err)
	}
	senderRec.waitJoined(t)

	viewerRec := newEventRecorder()
	viewer := newTestClient(t, addr, "a2", "小红", viewerRec)
	if err := viewer.Join("room1", protocol.RoleAudience); err != nil {
		t.Fatalf("viewer join: %v", err)
	}
	viewerRec.waitJoined(t)

	if err := sender.SendGift("Rose", ""); err != nil {
		t.Fatalf("send gift: %v", err)
	}

	// 留足双通道（礼物指令 + 聊天兜底）到达的时间
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if len(viewerRec.snapshot()) >= 1 && len(hostRec.snapshot()) >= 1 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	// 发送方只看到本地回显一次，回传的自身事件被过滤
	if got := senderRec.snapshot(); len(got) != 1 {
		t.Fatalf("sender shown %d times, want 1", len(got))
	}
	// 接收方双通道被事件ID去重，只展示一次
	viewerShown := viewerRec.snapshot()
	if len(viewerShown) != 1 {
		t.Fatalf("viewer shown %d times, want 1", len(viewerShown))
	}
	if viewerShown[0].GiftName != "Rose" || viewerShown[0].SenderID != "a1" {
		t.Fatalf("unexpected gift: %+v", viewerShown[0])
	}
	if hostShown := hostRec.snapshot(); len(hostShown) != 1 {
		t.Fatalf("host shown %d times, want 1", len(hostShown))
	}
}

func TestClientHostGiftFlaggedForViewers(t *testing.T) {
	addr := newTestServer(t)

	hostRec := newEventRecorder()
	host := newTestClient(t, addr, "host1", "主播", hostRec)
	if err := host.Join("room1", protocol.RoleHost); err != nil {
		t.Fatalf("host join: %v", err)
	}
	hostRec.waitJoined(t)

	viewerRec := newEventRecorder()
	viewer := newTestClient(t, addr, "a1", "小明", viewerRec)
	if err := viewer.Join("room1", protocol.RoleAudience); err != nil {
		t.Fatalf("viewer join: %v", err)
	}
	viewerRec.waitJoined(t)

	if err := host.SendGift("Crown", "小明"); err != nil {
		t.Fatalf("send gift: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if shown := viewerRec.snapshot(); len(shown) >= 1 {
			ev := shown[0]
			// 观众侧解析后的事件要保留主播标记
			if !ev.IsHost {
				t.Fatalf("host gift not flagged on viewer side: %+v", ev)
			}
			if ev.GiftName != "Crown" || ev.TargetName != "小明" {
				t.Fatalf("unexpected gift: %+v", ev)
			}
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("观众未收到主播礼物")
}

func TestClientReconnectSendsOnNewConnection(t *testing.T) {
	addr := newTestServer(t)

	received := make(chan *model.ChatMessage, 8)
	hostRec := newEventRecorder()
	host := newTestClient(t, addr, "host1", "主播", hostRec)
	if err := host.Join("room1", protocol.RoleHost); err != nil {
		t.Fatalf("host join: %v", err)
	}
	hostRec.waitJoined(t)

	// 断开后重连，旧连接上的发送路径不得复活
	host.Close()
	if err := host.Join("room1", protocol.RoleHost); err != nil {
		t.Fatalf("host rejoin: %v", err)
	}

	viewerRec := newEventRecorder()
	viewerCallbacks := viewerRec.callbacks()
	viewerCallbacks.OnChat = func(msg *model.ChatMessage) { received <- msg }
	viewer := client.NewClient(addr, &auth.Identity{UserID: "a1", DisplayName: "小明"}, nil, 100*time.Millisecond, viewerCallbacks)
	t.Cleanup(viewer.Close)
	if err := viewer.Join("room1", protocol.RoleAudience); err != nil {
		t.Fatalf("viewer join: %v", err)
	}
	viewerRec.waitJoined(t)

	if err := host.SendChat("回来了"); err != nil {
		t.Fatalf("send after reconnect: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Text != "回来了" || msg.UserID != "host1" {
			t.Fatalf("unexpected chat: %+v", msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("重连后的消息未送达")
	}
}

func TestClientChatDelivered(t *testing.T) {
	addr := newTestServer(t)

	hostRec := newEventRecorder()
	received := make(chan *model.ChatMessage, 8)
	hostCallbacks := hostRec.callbacks()
	hostCallbacks.OnChat = func(msg *model.ChatMessage) { received <- msg }
	host := client.NewClient(addr, &auth.Identity{UserID: "host1", DisplayName: "主播"}, nil, 100*time.Millisecond, hostCallbacks)
	t.Cleanup(host.Close)
	if err := host.Join("room1", protocol.RoleHost); err != nil {
		t.Fatalf("host join: %v", err)
	}
	hostRec.waitJoined(t)

	viewerRec := newEventRecorder()
	viewer := newTestClient(t, addr, "a1", "小明", viewerRec)
	if err := viewer.Join("room1", protocol.RoleAudience); err != nil {
		t.Fatalf("viewer join: %v", err)
	}
	viewerRec.waitJoined(t)

	if err := viewer.SendChat("大家好"); err != nil {
		t.Fatalf("send chat: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Text != "大家好" || msg.UserID != "a1" {
			t.Fatalf("unexpected chat: %+v", msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("聊天未送达")
	}
}

func TestClientSessionUpdatesOnJoin(t *testing.T) {
	addr := newTestServer(t)

	counts := make(chan int, 16)
	hostRec := newEventRecorder()
	hostCallbacks := hostRec.callbacks()
	hostCallbacks.OnSession = func(s *protocol.SessionData) { counts <- s.ViewCount }
	host := client.NewClient(addr, &auth.Identity{UserID: "host1", DisplayName: "主播"}, nil, 100*time.Millisecond, hostCallbacks)
	t.Cleanup(host.Close)
	if err := host.Join("room1", protocol.RoleHost); err != nil {
		t.Fatalf("host join: %v", err)
	}
	hostRec.waitJoined(t)

	viewerRec := newEventRecorder()
	viewer := newTestClient(t, addr, "a1", "小明", viewerRec)
	if err := viewer.Join("room1", protocol.RoleAudience); err != nil {
		t.Fatalf("viewer join: %v", err)
	}
	viewerRec.waitJoined(t)

	deadline := time.After(3 * time.Second)
	for {
		select {
		case n := <-counts:
			if n == 1 {
				return
			}
		case <-deadline:
			t.Fatalf("未收到观看人数变更")
		}
	}
}

func TestClientAvatarsFilledFromTraffic(t *testing.T) {
	addr := newTestServer(t)

	hostRec := newEventRecorder()
	host := newTestClient(t, addr, "host1", "主播", hostRec)
	if err := host.Join("room1", protocol.RoleHost); err != nil {
		t.Fatalf("host join: %v", err)
	}
	hostRec.waitJoined(t)

	viewerRec := newEventRecorder()
	viewer := newTestClient(t, addr, "a1", "小明", viewerRec)
	if err := viewer.Join("room1", protocol.RoleAudience); err != nil {
		t.Fatalf("viewer join: %v", err)
	}
	viewerRec.waitJoined(t)

	// 会话快照携带主播展示信息
	if got, ok := viewer.Avatars().Name("host1"); !ok || got != "主播" {
		t.Fatalf("host name not cached, got %q", got)
	}

	if err := viewer.SendChat("hello"); err != nil {
		t.Fatalf("send chat: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if name, ok := host.Avatars().Name("a1"); ok && name == "小明" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("观众昵称未进入缓存")
}
