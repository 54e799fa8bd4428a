package model

import "time"

// 礼物事件（仅存在于内存队列，不落库）
type GiftEvent struct {
	EventID    string    `json:"event_id"`
	ChannelID  string    `json:"channel_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	TargetName string    `json:"target_name,omitempty"`
	GiftName   string    `json:"gift_name"`
	Icon       string    `json:"icon"`
	IsHost     bool      `json:"is_host"`
	Timestamp  time.Time `json:"timestamp"`
}

// 礼物目录项
type Gift struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// 固定礼物目录
var GiftCatalog = []Gift{
	{Name: "Rose", Icon: "🌹"},
	{Name: "Finger Heart", Icon: "🫰"},
	{Name: "Perfume", Icon: "🧴"},
	{Name: "Crown", Icon: "👑"},
}

// 按名称查找礼物，找不到返回 false
func FindGift(name string) (Gift, bool) {
	for _, g := range GiftCatalog {
		if g.Name == name {
			return g, true
		}
	}
	return Gift{}, false
}

// 发送者名称兜底
func SenderNameOrDefault(name string) string {
	if name == "" {
		return "User"
	}
	return name
}
