package relay

import (
	"net/http"
	"sync"

	"XingHe-API/protocol"
	"XingHe-API/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Conn websocket 连接包装，写操作加锁防止并发写
type Conn struct {
	conn *websocket.Conn

	writeMutex sync.Mutex
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewConn(c *gin.Context) (*Conn, error) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn}, nil
}

func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *Conn) WriteResult(res *protocol.Result) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	if res.Code != protocol.CodeOK {
		utils.Logger.Errorf("下发错误结果 type=%s code=%d msg=%s", res.Type, res.Code, res.Msg)
	}
	return c.conn.WriteJSON(res)
}

func (c *Conn) WriteResultOK(resType string, data interface{}) error {
	return c.WriteResult(protocol.NewResultOK(resType, data))
}

func (c *Conn) WriteResultError(resType string, code int, msg string) error {
	return c.WriteResult(protocol.NewResultError(resType, code, msg))
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
