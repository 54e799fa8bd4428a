package relay

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"XingHe-API/protocol"
	"XingHe-API/registry"
)

func newHubStore(t *testing.T) *registry.Store {
	t.Helper()
	db, err := registry.Open(filepath.Join(t.TempDir(), "hub.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := registry.NewStore(db)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	return store
}

func newHubParticipant(sessionID, channelID, role string) *participant {
	return &participant{
		sessionID: sessionID,
		channelID: channelID,
		userID:    "u-" + sessionID,
		role:      role,
		send:      make(chan *protocol.Result, 4),
		done:      make(chan struct{}),
	}
}

// 房间回收与广播并发时不得崩溃：最后一个参与者离开触发回收，
// 另一协程还拿着房间引用在投递
func TestBroadcastDuringRoomTeardown(t *testing.T) {
	store := newHubStore(t)
	if err := store.CreateSession("room1", "host1", "", ""); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	hub := NewHub(store)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		res := protocol.NewResultOK(protocol.ResultChat, nil)
		for {
			select {
			case <-stop:
				return
			default:
				hub.Broadcast("room1", res)
			}
		}
	}()

	// 反复让唯一参与者进出房，每轮都走一次回收
	for i := 0; i < 2000; i++ {
		p := newHubParticipant(fmt.Sprintf("s%d", i), "room1", protocol.RoleAudience)
		if err := hub.Join(p); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		hub.Leave(p)
	}

	close(stop)
	wg.Wait()
}

func TestHubRoomReusableAfterTeardown(t *testing.T) {
	store := newHubStore(t)
	if err := store.CreateSession("room1", "host1", "", ""); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	hub := NewHub(store)

	p := newHubParticipant("s1", "room1", protocol.RoleAudience)
	if err := hub.Join(p); err != nil {
		t.Fatalf("join: %v", err)
	}
	hub.Leave(p)

	if n := len(hub.ActiveRooms()); n != 0 {
		t.Fatalf("expected no active rooms, got %d", n)
	}

	// 回收后的频道可以再次进入
	p2 := newHubParticipant("s2", "room1", protocol.RoleAudience)
	if err := hub.Join(p2); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if hub.RoomClientCount("room1") != 1 {
		t.Fatalf("expected 1 client after rejoin")
	}
	hub.Leave(p2)
}

func TestHubLeaveIdempotent(t *testing.T) {
	store := newHubStore(t)
	if err := store.CreateSession("room1", "host1", "", ""); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	hub := NewHub(store)

	p := newHubParticipant("s1", "room1", protocol.RoleAudience)
	if err := hub.Join(p); err != nil {
		t.Fatalf("join: %v", err)
	}
	hub.Leave(p)
	// 重复离房不应二次计数或崩溃
	hub.Leave(p)

	session, err := store.GetSession("room1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session.ViewCount != 0 {
		t.Fatalf("expected view_count 0, got %d", session.ViewCount)
	}
}
