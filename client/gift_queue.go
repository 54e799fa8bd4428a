package client

import (
	"sync"
	"time"

	"XingHe-API/model"
)

const (
	// 礼物展示时长
	DefaultGiftDisplay = 4000 * time.Millisecond
	// 去重窗口大小
	recentGiftWindow = 50
)

// GiftQueue 礼物事件队列。三个来源（本地回显、指令通道、聊天兜底）
// 的事件串行为同一时刻只展示一条，先到先展示，事件ID去重。
type GiftQueue struct {
	mu       sync.Mutex
	active   *model.GiftEvent
	backlog  []*model.GiftEvent
	display  time.Duration
	timer    *time.Timer
	seen     *RecentSet
	onChange func(*model.GiftEvent)
	stopped  bool
}

// NewGiftQueue 创建队列。display 不大于0时取默认4秒。
// onChange 在展示位变化时回调，清空时参数为 nil。
func NewGiftQueue(display time.Duration, onChange func(*model.GiftEvent)) *GiftQueue {
	if display <= 0 {
		display = DefaultGiftDisplay
	}
	return &GiftQueue{
		display:  display,
		seen:     NewRecentSet(recentGiftWindow),
		onChange: onChange,
	}
}

// Enqueue 追加事件。相同事件ID在去重窗口内只入队一次，
// 无论它从哪条通道先到。
func (q *GiftQueue) Enqueue(ev *model.GiftEvent) {
	if ev == nil {
		return
	}

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	if ev.EventID != "" && !q.seen.Add(ev.EventID) {
		q.mu.Unlock()
		return
	}
	q.backlog = append(q.backlog, ev)
	promoted := q.promoteLocked()
	current, cb := q.active, q.onChange
	q.mu.Unlock()

	if promoted && cb != nil {
		cb(current)
	}
}

// ClearActive 清空展示位。积压非空时立即顶上下一条。
func (q *GiftQueue) ClearActive() {
	q.mu.Lock()
	if q.stopped || q.active == nil {
		q.mu.Unlock()
		return
	}
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.active = nil
	q.promoteLocked()
	current, cb := q.active, q.onChange
	q.mu.Unlock()

	if cb != nil {
		cb(current)
	}
}

// 展示位空闲且有积压时顶上队首，并启动自清除计时
func (q *GiftQueue) promoteLocked() bool {
	if q.active != nil || len(q.backlog) == 0 {
		return false
	}
	q.active = q.backlog[0]
	q.backlog = q.backlog[1:]
	q.timer = time.AfterFunc(q.display, q.ClearActive)
	return true
}

// Active 当前展示中的事件
func (q *GiftQueue) Active() *model.GiftEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// BacklogLen 积压数量
func (q *GiftQueue) BacklogLen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Stop 停止队列并取消计时器，之后的入队被忽略
func (q *GiftQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	q.stopped = true
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.active = nil
	q.backlog = nil
}
