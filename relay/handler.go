package relay

import (
	"time"

	"XingHe-API/model"
	"XingHe-API/protocol"
	"XingHe-API/registry"
	"XingHe-API/utils"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/tidwall/gjson"
)

type Handler struct {
	hub       *Hub
	store     *registry.Store
	shareBase string
}

func NewHandler(hub *Hub, store *registry.Store, shareBase string) *Handler {
	return &Handler{
		hub:       hub,
		store:     store,
		shareBase: shareBase,
	}
}

// WebSocket 指令通道入口。首条请求必须是 join，
// 之后接受 heartbeat / gift / chat / end。
func (h *Handler) WebSocket(c *gin.Context) {
	conn, err := NewConn(c)
	if err != nil {
		utils.Logger.Errorf("websocket 升级失败: %v", err)
		return
	}
	defer conn.Close()

	var p *participant
	var hostID string
	defer func() {
		if p != nil {
			h.hub.Leave(p)
		}
	}()

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		reqType, reqData, err := protocol.ParseRequest(data)
		if err != nil {
			utils.Logger.Warnf("丢弃非法请求: %v", err)
			conn.WriteResultError(protocol.ResultRoom, protocol.CodeBadRequest, err.Error())
			continue
		}

		switch reqType {
		case protocol.ReqJoin:
			if p != nil {
				conn.WriteResultError(protocol.ResultRoom, protocol.CodeBadRequest, "连接已入房")
				continue
			}
			joined, host, err := h.handleJoin(conn, reqData)
			if err != nil {
				utils.Logger.Warnf("入房失败: %v", err)
				return
			}
			p, hostID = joined, host

		case protocol.ReqHeartbeat:
			conn.WriteResultOK(protocol.ResultHeartbeat, nil)

		case protocol.ReqGift:
			if p == nil {
				conn.WriteResultError(protocol.ResultGift, protocol.CodeForbidden, "未入房")
				continue
			}
			h.handleGift(conn, p, hostID, reqData)

		case protocol.ReqChat:
			if p == nil {
				conn.WriteResultError(protocol.ResultChat, protocol.CodeForbidden, "未入房")
				continue
			}
			h.handleChat(conn, p, reqData)

		case protocol.ReqEnd:
			if p == nil || !p.isHost() {
				conn.WriteResultError(protocol.ResultSession, protocol.CodeForbidden, "仅主播可下播")
				continue
			}
			h.hub.EndSession(p.channelID)

		default:
			conn.WriteResultError(protocol.ResultRoom, protocol.CodeBadRequest, "未知请求类型")
		}
	}
}

// handleJoin 建立参与者并绑定房间。返回参与者和频道主播ID。
func (h *Handler) handleJoin(conn *Conn, data gjson.Result) (*participant, string, error) {
	join := &protocol.JoinData{
		ChannelID: data.Get("channel_id").String(),
		UserID:    data.Get("user_id").String(),
		UserName:  data.Get("user_name").String(),
		Avatar:    data.Get("avatar").String(),
		Role:      data.Get("role").String(),
	}
	if join.ChannelID == "" || join.UserID == "" {
		conn.WriteResultError(protocol.ResultRoom, protocol.CodeBadRequest, "缺少channel_id或user_id")
		return nil, "", errNoSession("join参数不完整")
	}
	if join.Role != protocol.RoleHost {
		join.Role = protocol.RoleAudience
	}

	if join.Role == protocol.RoleHost {
		if err := h.store.CreateSession(join.ChannelID, join.UserID, join.UserName, join.Avatar); err != nil {
			conn.WriteResultError(protocol.ResultRoom, protocol.CodeInternalError, err.Error())
			return nil, "", err
		}
	} else {
		session, err := h.store.GetSession(join.ChannelID)
		if err != nil || !session.IsLive() {
			conn.WriteResultError(protocol.ResultRoom, protocol.CodeNotFound, "频道未开播")
			return nil, "", errNoSession(join.ChannelID)
		}
	}

	p := &participant{
		sessionID: ulid.Make().String(),
		channelID: join.ChannelID,
		userID:    join.UserID,
		userName:  join.UserName,
		avatar:    join.Avatar,
		role:      join.Role,
		send:      make(chan *protocol.Result, 64),
		done:      make(chan struct{}),
	}
	if err := h.hub.Join(p); err != nil {
		conn.WriteResultError(protocol.ResultRoom, protocol.CodeInternalError, err.Error())
		return nil, "", err
	}

	// 下发结果由单独协程串行写出
	go func() {
		for {
			select {
			case res := <-p.send:
				if err := conn.WriteResult(res); err != nil {
					return
				}
			case <-p.done:
				return
			}
		}
	}()

	session, err := h.store.GetSession(join.ChannelID)
	if err != nil {
		utils.Logger.Errorf("频道 %s 查询会话失败: %v", join.ChannelID, err)
		return p, "", nil
	}
	conn.WriteResultOK(protocol.ResultRoom, session)
	return p, session.HostID, nil
}

// handleGift 校验礼物并向房间双通道广播。
// 发送者身份以连接上的参与者为准，是否主播按频道 hostID 判定。
func (h *Handler) handleGift(conn *Conn, p *participant, hostID string, data gjson.Result) {
	giftName := data.Get("gift_name").String()
	gift, ok := model.FindGift(giftName)
	if !ok {
		conn.WriteResultError(protocol.ResultGift, protocol.CodeBadRequest, "未知礼物: "+giftName)
		return
	}

	eventID := data.Get("event_id").String()
	if eventID == "" {
		eventID = ulid.Make().String()
	}

	ev := &model.GiftEvent{
		EventID:    eventID,
		ChannelID:  p.channelID,
		SenderID:   p.userID,
		SenderName: model.SenderNameOrDefault(p.userName),
		TargetName: data.Get("target_name").String(),
		GiftName:   gift.Name,
		Icon:       gift.Icon,
		IsHost:     p.userID == hostID,
		Timestamp:  time.Now(),
	}
	if err := h.hub.BroadcastGift(ev); err != nil {
		utils.Logger.Errorf("频道 %s 礼物广播失败: %v", p.channelID, err)
	}
}

func (h *Handler) handleChat(conn *Conn, p *participant, data gjson.Result) {
	text := data.Get("text").String()
	if text == "" {
		return
	}

	msg := &model.ChatMessage{
		ChannelID: p.channelID,
		UserID:    p.userID,
		UserName:  model.SenderNameOrDefault(p.userName),
		Avatar:    p.avatar,
		Text:      text,
		Timestamp: time.Now(),
	}
	if err := h.hub.Broadcast(p.channelID, protocol.NewResultOK(protocol.ResultChat, msg)); err != nil {
		utils.Logger.Errorf("频道 %s 聊天广播失败: %v", p.channelID, err)
	}
}

type errNoSession string

func (e errNoSession) Error() string {
	return "无可用会话: " + string(e)
}
