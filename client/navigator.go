package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"keyrelay/logging"
)

// JoinNavigator 访问根路径让服务端分配新玩家（服务端 302 到 /player/{id}）
// 新会话通过 Sessions() 交给主循环，原会话的玩家标识保持不变
type JoinNavigator struct {
	base     *url.URL
	client   *http.Client
	viewport Viewport
	sessions chan Session
}

func NewJoinNavigator(baseURL string, vp Viewport, timeout time.Duration) (*JoinNavigator, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	return &JoinNavigator{
		base: u,
		client: &http.Client{
			Timeout: timeout,
			// 不跟随跳转，Location 本身就是我们要的玩家地址
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		viewport: vp,
		sessions: make(chan Session, 1),
	}, nil
}

// Sessions 跳转产生的新会话；只保留最新一个
func (n *JoinNavigator) Sessions() <-chan Session { return n.sessions }

// Join 请求根路径并解析出玩家标识
func (n *JoinNavigator) Join(ctx context.Context) (Session, error) {
	return n.join(ctx, "/")
}

// Navigate 实现 Navigator：跳转到 p 并发布新会话
func (n *JoinNavigator) Navigate(ctx context.Context, p string) error {
	s, err := n.join(ctx, p)
	if err != nil {
		return err
	}
	select { // 丢弃旧的，推送最新
	case <-n.sessions:
	default:
	}
	select {
	case n.sessions <- s:
	default:
	}
	logging.Log.Infof("navigated to %s: player=%s", p, s.PlayerID)
	return nil
}

func (n *JoinNavigator) join(ctx context.Context, p string) (Session, error) {
	target := n.base.JoinPath(p).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Session{}, &TransportError{Err: err}
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return Session{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 300 || resp.StatusCode > 399 {
		return Session{}, &TransportError{Status: resp.StatusCode}
	}
	id, err := playerFromLocation(resp.Header.Get("Location"))
	if err != nil {
		return Session{}, err
	}
	return NewSession(id, n.viewport)
}

// playerFromLocation 解析 /player/{id}（允许绝对地址）
func playerFromLocation(loc string) (PlayerID, error) {
	if loc == "" {
		return "", ErrNoLocation
	}
	u, err := url.Parse(loc)
	if err != nil {
		return "", fmt.Errorf("parse location %q: %w", loc, err)
	}
	dir, id := path.Split(strings.TrimRight(u.Path, "/"))
	if dir != "/player/" || id == "" {
		return "", fmt.Errorf("%w: %q", ErrNoLocation, loc)
	}
	return PlayerID(id), nil
}
