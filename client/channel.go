package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"keyrelay/logging"
	"keyrelay/protocol"
)

// Channel 命令通道：把批次发给指定玩家，立即返回可等待的结果
// 每次调用相互独立，不合并、不去重
type Channel interface {
	Send(ctx context.Context, id PlayerID, batch Batch) *Outcome
}

// WireFormat 载荷形态
type WireFormat int

const (
	WireCommands WireFormat = iota
	WireAction
)

// TransportError 请求未完成或返回非 2xx；Status 为 0 表示网络错误
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport failure: status %d", e.Status)
	}
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransport, e.Err}
	}
	return []error{ErrTransport}
}

// Encode 按载荷形态序列化批次，保持批次内顺序
func Encode(format WireFormat, batch Batch) ([]byte, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	switch format {
	case WireCommands:
		body := protocol.CommandsBody{Commands: make([]protocol.Command, 0, len(batch))}
		for _, c := range batch {
			var m string
			switch c.Kind {
			case CmdSetVelocity:
				m = protocol.MethodSetVelocity
			case CmdSetRotation:
				m = protocol.MethodSetRotation
			case CmdRespawn:
				m = protocol.MethodRespawn
			default:
				return nil, fmt.Errorf("%w: %s in commands payload", ErrUnsupportedCommand, c)
			}
			body.Commands = append(body.Commands, protocol.Command{M: m, V: c.Value})
		}
		return json.Marshal(body)
	case WireAction:
		if len(batch) != 1 {
			return nil, fmt.Errorf("%w: action payload carries one command, got %d", ErrUnsupportedCommand, len(batch))
		}
		c := batch[0]
		switch c.Kind {
		case CmdMove:
			return json.Marshal(protocol.MoveBody{Action: protocol.ActionMove, DX: c.DX, DY: c.DY})
		case CmdRespawn:
			return json.Marshal(protocol.ActionBody{Action: protocol.ActionRespawn})
		default:
			return nil, fmt.Errorf("%w: %s in action payload", ErrUnsupportedCommand, c)
		}
	}
	return nil, fmt.Errorf("unknown wire format %d", format)
}

// HTTPChannel 通过 POST /player/{id} 发送命令
type HTTPChannel struct {
	base    *url.URL
	client  *http.Client
	format  WireFormat
	timeout time.Duration
}

// NewHTTPChannel baseURL 形如 http://127.0.0.1:3000
func NewHTTPChannel(baseURL string, format WireFormat, timeout time.Duration, hc *http.Client) (*HTTPChannel, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPChannel{base: u, client: hc, format: format, timeout: timeout}, nil
}

// Send 同步完成编码，网络请求在独立协程中进行
func (c *HTTPChannel) Send(ctx context.Context, id PlayerID, batch Batch) *Outcome {
	if id == "" {
		return Resolved(ErrEmptyPlayerID)
	}
	body, err := Encode(c.format, batch)
	if err != nil {
		return Resolved(err)
	}
	target := c.base.JoinPath("player", string(id)).String()

	out := newOutcome()
	go func() {
		out.resolve(c.post(ctx, target, body))
	}()
	return out
}

func (c *HTTPChannel) post(ctx context.Context, target string, body []byte) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Log.Debugf("command rejected: url=%s status=%d", target, resp.StatusCode)
		return &TransportError{Status: resp.StatusCode}
	}
	return nil
}
