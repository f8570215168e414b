package client

import (
	"context"
	"errors"
	"fmt"

	"keyrelay/logging"
	"keyrelay/protocol"
)

// Status 状态行内容
type Status struct {
	PlayerID PlayerID
	Scheme   Scheme
	Viewport Viewport
	Last     string
	State    *protocol.PlayerState
}

func (s Status) Lines() []string {
	lines := []string{
		fmt.Sprintf("player %s  scheme %s  viewport %dx%d", s.PlayerID, s.Scheme, s.Viewport.Width, s.Viewport.Height),
		"keys: w a s d move, p respawn, esc quit",
	}
	if s.Last != "" {
		lines = append(lines, "last: "+s.Last)
	}
	if st := s.State; st != nil {
		life := "alive"
		if st.Dead {
			life = "dead"
		}
		lines = append(lines, fmt.Sprintf("pos (%.1f, %.1f)  v %.1f  dir %.2f  %s", st.X, st.Y, st.Velocity, st.Direction, life))
	}
	return lines
}

// StatusSink 状态展示（终端或测试替身）
type StatusSink interface {
	Show(Status)
}

// Joiner 获取会话并在重生后发布新会话
type Joiner interface {
	Navigator
	Join(ctx context.Context) (Session, error)
	Sessions() <-chan Session
}

// App 客户端主循环：串行处理按键事件，重生后切换到新会话
type App struct {
	Channel  Channel
	Joiner   Joiner
	Watcher  *Watcher   // 可选
	Sink     StatusSink // 可选
	Options  Options
	PlayerID PlayerID // 为空时向服务端申请
	Viewport Viewport
	Metrics  *Metrics
}

// Run 直到事件源关闭或 ctx 结束
func (a *App) Run(ctx context.Context, src EventSource) error {
	if a.Channel == nil || a.Joiner == nil {
		return errors.New("app requires a channel and a joiner")
	}
	if a.Metrics == nil {
		a.Metrics = &Metrics{}
	}
	sess, err := a.initialSession(ctx)
	if err != nil {
		return err
	}
	logging.Log.Infof("session started: player=%s viewport=%dx%d scheme=%s",
		sess.PlayerID, sess.Viewport.Width, sess.Viewport.Height, a.Options.Scheme)

	states := make(chan protocol.PlayerState, 1)
	t := NewTranslator(sess, a.Channel, a.Joiner, a.Options, a.Metrics)
	stopWatch := a.watch(ctx, sess.PlayerID, states)
	defer func() { stopWatch() }()

	status := statusFor(t.Session(), a.Options.Scheme)
	a.show(status)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-src.Events():
			if !ok {
				return nil
			}
			if out := t.Handle(ctx, ev); out != nil {
				status.Last = fmt.Sprintf("%s %s", ev.Kind, eventLabel(ev))
				a.show(status)
			}
		case next := <-a.Joiner.Sessions():
			stopWatch()
			t = NewTranslator(next, a.Channel, a.Joiner, a.Options, a.Metrics)
			stopWatch = a.watch(ctx, next.PlayerID, states)
			status = statusFor(t.Session(), a.Options.Scheme)
			status.Last = "respawned"
			logging.Log.Infof("session replaced: player=%s", next.PlayerID)
			a.show(status)
		case st := <-states:
			if PlayerID(st.ID) != status.PlayerID {
				continue
			}
			status.State = &st
			a.show(status)
		}
	}
}

// initialSession 当前配置的会话；未配置玩家标识时加入服务端
func (a *App) initialSession(ctx context.Context) (Session, error) {
	if a.PlayerID != "" {
		return NewSession(a.PlayerID, a.Viewport)
	}
	sess, err := a.Joiner.Join(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("join: %w", err)
	}
	return sess, nil
}

// watch 在后台订阅玩家状态；返回取消函数
func (a *App) watch(ctx context.Context, id PlayerID, states chan protocol.PlayerState) context.CancelFunc {
	if a.Watcher == nil {
		return func() {}
	}
	wctx, cancel := context.WithCancel(ctx)
	go func() {
		err := a.Watcher.Watch(wctx, id, func(st protocol.PlayerState) {
			select { // 丢弃旧的，推送最新
			case <-states:
			default:
			}
			select {
			case states <- st:
			default:
			}
		})
		if err != nil && wctx.Err() == nil {
			logging.Log.Warnf("state watch ended: player=%s err=%v", id, err)
		}
	}()
	return cancel
}

func statusFor(s Session, scheme Scheme) Status {
	return Status{PlayerID: s.PlayerID, Scheme: scheme, Viewport: s.Viewport}
}

func (a *App) show(s Status) {
	if a.Sink != nil {
		a.Sink.Show(s)
	}
}

func eventLabel(ev KeyEvent) string {
	if ev.Kind == EventKeyPress {
		return string(ev.Char)
	}
	return string(ev.Code)
}
