package model

import "time"

// 会话状态
const (
	StatusLive  = "live"
	StatusEnded = "ended"
)

// 直播会话（频道注册表中的一条记录）
type LiveSession struct {
	ChannelID  string    `json:"channel_id"`
	HostID     string    `json:"host_id"`
	HostName   string    `json:"host_name"`
	HostAvatar string    `json:"host_avatar"`
	Status     string    `json:"status"`
	ViewCount  int       `json:"view_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *LiveSession) IsLive() bool {
	return s.Status == StatusLive
}

// 聊天消息
type ChatMessage struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Avatar    string    `json:"avatar,omitempty"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// 礼物兜底通道：携带原始礼物事件ID和礼物名，接收方可据此还原礼物事件
	GiftEventID string `json:"gift_event_id,omitempty"`
	GiftName    string `json:"gift_name,omitempty"`
}
