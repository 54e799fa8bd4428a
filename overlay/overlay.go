package overlay

import (
	"fmt"
	"io"
	"sync"

	"XingHe-API/client"
	"XingHe-API/model"
)

// Renderer 礼物展示的渲染后端
type Renderer interface {
	ShowGift(ev *model.GiftEvent)
	Clear()
}

// Overlay 礼物浮层。跟随队列展示位变化驱动渲染，
// 自清除由队列计时器完成，媒体提前播完时可主动清位。
type Overlay struct {
	mu       sync.Mutex
	renderer Renderer
	queue    *client.GiftQueue
}

func New(renderer Renderer) *Overlay {
	return &Overlay{renderer: renderer}
}

// Bind 关联队列，用于媒体结束时的主动清位
func (o *Overlay) Bind(q *client.GiftQueue) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queue = q
}

// HandleActive 作为队列的展示位回调接入
func (o *Overlay) HandleActive(ev *model.GiftEvent) {
	if ev == nil {
		o.renderer.Clear()
		return
	}
	o.renderer.ShowGift(ev)
}

// MediaEnded 礼物动画提前播完，立即清位顶上下一条
func (o *Overlay) MediaEnded() {
	o.mu.Lock()
	q := o.queue
	o.mu.Unlock()

	if q != nil {
		q.ClearActive()
	}
}

// WriterRenderer 纯文本渲染，写到任意 io.Writer
type WriterRenderer struct {
	w io.Writer
}

func NewWriterRenderer(w io.Writer) *WriterRenderer {
	return &WriterRenderer{w: w}
}

func (r *WriterRenderer) ShowGift(ev *model.GiftEvent) {
	sender := ev.SenderName
	if ev.IsHost {
		sender = sender + "(主播)"
	}
	if ev.TargetName != "" {
		fmt.Fprintf(r.w, "[礼物] %s 送给 %s：%s %s\n", sender, ev.TargetName, ev.GiftName, ev.Icon)
		return
	}
	fmt.Fprintf(r.w, "[礼物] %s 送出了 %s %s\n", sender, ev.GiftName, ev.Icon)
}

func (r *WriterRenderer) Clear() {}
