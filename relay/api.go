package relay

import (
	"errors"
	"fmt"
	"net/http"

	"XingHe-API/protocol"
	"XingHe-API/registry"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

type Result struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

func BuildResultOk(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Result{
		Code: protocol.CodeOK,
		Msg:  "ok",
		Data: data,
	})
}

func BuildResultError(c *gin.Context, httpCode int, code int, msg string) {
	c.JSON(httpCode, &Result{
		Code: code,
		Msg:  msg,
	})
}

// ListLive 正在直播的频道，发现页据此渲染 LIVE 角标
func (h *Handler) ListLive(c *gin.Context) {
	sessions, err := h.store.ListLive()
	if err != nil {
		BuildResultError(c, http.StatusInternalServerError, protocol.CodeInternalError, err.Error())
		return
	}
	BuildResultOk(c, sessions)
}

// GetRoom 单个频道的会话快照
func (h *Handler) GetRoom(c *gin.Context) {
	channelID := c.Param("channel")
	session, err := h.store.GetSession(channelID)
	if err != nil {
		if errors.Is(err, registry.ErrSessionNotFound) {
			BuildResultError(c, http.StatusNotFound, protocol.CodeNotFound, "频道不存在")
			return
		}
		BuildResultError(c, http.StatusInternalServerError, protocol.CodeInternalError, err.Error())
		return
	}
	BuildResultOk(c, session)
}

// ShareURL 频道分享链接
func (h *Handler) ShareURL(channelID string) string {
	return fmt.Sprintf("%s/%s", h.shareBase, channelID)
}

// QRCode 频道分享二维码，返回PNG
func (h *Handler) QRCode(c *gin.Context) {
	channelID := c.Param("channel")
	if _, err := h.store.GetSession(channelID); err != nil {
		BuildResultError(c, http.StatusNotFound, protocol.CodeNotFound, "频道不存在")
		return
	}

	png, err := qrcode.Encode(h.ShareURL(channelID), qrcode.Medium, 256)
	if err != nil {
		BuildResultError(c, http.StatusInternalServerError, protocol.CodeInternalError, err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
