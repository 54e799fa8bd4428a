package protocol

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// 请求类型（客户端 -> 服务端）
const (
	ReqJoin      = "join"
	ReqHeartbeat = "heartbeat"
	ReqGift      = "gift"
	ReqChat      = "chat"
	ReqEnd       = "end"
)

// 结果类型（服务端 -> 客户端）
const (
	ResultRoom      = "room"
	ResultSession   = "session"
	ResultGift      = "gift"
	ResultChat      = "chat"
	ResultHeartbeat = "heartbeat"
)

// 参与角色
const (
	RoleHost     = "host"
	RoleAudience = "audience"
)

const (
	CodeOK            = 0
	CodeBadRequest    = 400
	CodeForbidden     = 403
	CodeNotFound      = 404
	CodeInternalError = 500
)

type Request struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type Result struct {
	Type string          `json:"type"`
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

// 入房参数
type JoinData struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Avatar    string `json:"avatar,omitempty"`
	Role      string `json:"role"`
}

// 会话变更推送
type SessionData struct {
	ChannelID string `json:"channel_id"`
	Status    string `json:"status"`
	ViewCount int    `json:"view_count"`
}

// ParseRequest 解析客户端请求，返回类型和原始 data 段
func ParseRequest(data []byte) (string, gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return "", gjson.Result{}, errors.New("请求不是合法JSON")
	}
	result := gjson.ParseBytes(data)

	reqType := result.Get("type").String()
	if reqType == "" {
		return "", gjson.Result{}, errors.New("请求格式错误：缺少type字段")
	}

	return reqType, result.Get("data"), nil
}

// ParseResult 解析服务端结果，返回类型和原始 data 段
func ParseResult(data []byte) (string, gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return "", gjson.Result{}, errors.New("结果不是合法JSON")
	}
	result := gjson.ParseBytes(data)

	resType := result.Get("type").String()
	if resType == "" {
		return "", gjson.Result{}, errors.New("结果格式错误：缺少type字段")
	}
	if code := result.Get("code").Int(); code != CodeOK {
		return resType, gjson.Result{}, errors.New(result.Get("msg").String())
	}

	return resType, result.Get("data"), nil
}

func NewRequest(reqType string, data interface{}) ([]byte, error) {
	req := &Request{Type: reqType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		req.Data = raw
	}
	return json.Marshal(req)
}

func NewResultOK(resType string, data interface{}) *Result {
	res := &Result{Type: resType, Code: CodeOK, Msg: "success"}
	if data != nil {
		raw, err := json.Marshal(data)
		if err == nil {
			res.Data = raw
		}
	}
	return res
}

func NewResultError(resType string, code int, msg string) *Result {
	return &Result{Type: resType, Code: code, Msg: msg}
}
