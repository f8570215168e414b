package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"keyrelay/logging"
	"keyrelay/protocol"
)

// Watcher 订阅服务端推送的玩家状态（/player/{id}/ws）
type Watcher struct {
	base   *url.URL
	dialer *websocket.Dialer
}

func NewWatcher(baseURL string) (*Watcher, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return &Watcher{
		base:   u,
		dialer: &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
	}, nil
}

// Watch 持续读取状态直到 ctx 结束或连接断开
func (w *Watcher) Watch(ctx context.Context, id PlayerID, fn func(protocol.PlayerState)) error {
	target := w.base.JoinPath("player", string(id), "ws").String()
	conn, _, err := w.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", target, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read state: %w", err)
		}
		var st protocol.PlayerState
		if err := json.Unmarshal(payload, &st); err != nil {
			logging.Log.Debugf("skip malformed state: %v", err)
			continue
		}
		fn(st)
	}
}
