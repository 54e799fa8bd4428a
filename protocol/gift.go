package protocol

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"XingHe-API/model"

	"github.com/tidwall/gjson"
)

// ParseGiftEvent 从结果 data 段还原礼物事件。
// 缺失的图标按目录补齐，发送者名称为空时兜底为 "User"。
func ParseGiftEvent(data gjson.Result) (*model.GiftEvent, error) {
	if !data.Exists() {
		return nil, errors.New("礼物数据为空")
	}

	giftName := data.Get("gift_name").String()
	if giftName == "" {
		return nil, errors.New("礼物数据缺少gift_name")
	}

	ev := &model.GiftEvent{
		EventID:    data.Get("event_id").String(),
		ChannelID:  data.Get("channel_id").String(),
		SenderID:   data.Get("sender_id").String(),
		SenderName: model.SenderNameOrDefault(data.Get("sender_name").String()),
		TargetName: data.Get("target_name").String(),
		GiftName:   giftName,
		Icon:       data.Get("icon").String(),
		IsHost:     data.Get("is_host").Bool(),
		Timestamp:  time.Now(),
	}
	if ev.Icon == "" {
		if g, ok := model.FindGift(giftName); ok {
			ev.Icon = g.Icon
		}
	}

	return ev, nil
}

// GiftFromChat 礼物兜底通道：尝试把一条聊天消息还原为礼物事件。
// 优先使用消息携带的事件ID和礼物名，缺失时回退到文本匹配。
func GiftFromChat(data gjson.Result) (*model.GiftEvent, bool) {
	if !data.Exists() {
		return nil, false
	}

	giftName := data.Get("gift_name").String()
	if giftName == "" {
		giftName = giftNameFromText(data.Get("text").String())
	}
	if giftName == "" {
		return nil, false
	}
	g, ok := model.FindGift(giftName)
	if !ok {
		return nil, false
	}

	return &model.GiftEvent{
		EventID:    data.Get("gift_event_id").String(),
		ChannelID:  data.Get("channel_id").String(),
		SenderID:   data.Get("user_id").String(),
		SenderName: model.SenderNameOrDefault(data.Get("user_name").String()),
		GiftName:   g.Name,
		Icon:       g.Icon,
		Timestamp:  time.Now(),
	}, true
}

// FormatGiftChatText 礼物对应的聊天文案
func FormatGiftChatText(senderName string, gift model.Gift) string {
	return fmt.Sprintf("%s 送出了 %s %s", model.SenderNameOrDefault(senderName), gift.Name, gift.Icon)
}

// 从聊天文本中识别礼物名
func giftNameFromText(text string) string {
	if !strings.Contains(text, "送出了") {
		return ""
	}
	for _, g := range model.GiftCatalog {
		if strings.Contains(text, g.Name) {
			return g.Name
		}
	}
	return ""
}
