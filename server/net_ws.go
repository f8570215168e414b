package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"keyrelay/logging"
)

// ClientConn 负责推送（写）状态到订阅者的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
	out  <-chan []byte // 写协程读取端，Close 后仍可 drain
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	send := make(chan []byte, 64)
	return &ClientConn{
		ws:   ws,
		send: send,
		out:  send,
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
// 调用方持有世界锁，与 Close 互斥
func (c *ClientConn) Enqueue(b []byte) {
	if c.send == nil {
		return
	}
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃新状态（防止阻塞 Tick）
	}
}

// Close 关闭发送队列，写协程随后关闭底层连接
func (c *ClientConn) Close() {
	if c.send != nil {
		close(c.send)
		c.send = nil
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.out {
		_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

// readPump 订阅方不发送业务数据，只用于感知断开
func (c *ClientConn) readPump(world *World, id PlayerID) {
	// 读泵退出时取消订阅
	defer world.RequestLeave(id, c)
	c.ws.SetReadLimit(1 << 10)
	_ = c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)) })

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 开发环境：允许所有来源
		return true
	},
}

// HandleWatch WebSocket 接入：GET /player/{id}/ws
func (s *Server) HandleWatch(w http.ResponseWriter, r *http.Request) {
	id := PlayerID(r.PathValue("id"))
	if _, ok := s.world.Lookup(id); !ok {
		http.Error(w, "unknown player", http.StatusNotFound)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Log.Warnf("upgrade error: %v", err)
		return
	}

	client := NewClientConn(ws)
	if !s.world.Watch(id, client) {
		_ = ws.Close()
		return
	}

	go client.writePump()
	go client.readPump(s.world, id)
}
