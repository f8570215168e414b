package client

import (
	"context"
	"slices"

	"keyrelay/logging"
)

// Navigator 重生成功后的跳转（对应页面重新加载到根路径）
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Options 输入翻译器的部署选项
type Options struct {
	Scheme         Scheme
	ReleasePolicy  ReleasePolicy
	SuppressRepeat bool
}

// Translator 把按键事件翻译成命令批次并交给命令通道
//
// 处理函数必须在同一个协程中串行调用（事件循环）；派发本身是异步的，
// 多个请求可以同时在途，到达服务端的顺序不作保证。
type Translator struct {
	session Session
	ch      Channel
	nav     Navigator
	opts    Options
	metrics *Metrics

	held []KeyCode // 仍按着的移动键，按下顺序
}

func NewTranslator(s Session, ch Channel, nav Navigator, opts Options, m *Metrics) *Translator {
	if m == nil {
		m = &Metrics{}
	}
	return &Translator{session: s, ch: ch, nav: nav, opts: opts, metrics: m}
}

func (t *Translator) Session() Session  { return t.session }
func (t *Translator) Metrics() *Metrics { return t.metrics }

// Handle 按事件类型分发；未产生命令时返回 nil
func (t *Translator) Handle(ctx context.Context, ev KeyEvent) *Outcome {
	logging.Log.Debugf("key %s code=%s char=%q", ev.Kind, ev.Code, ev.Char)
	switch ev.Kind {
	case EventKeyDown:
		return t.OnKeyDown(ctx, ev.Code)
	case EventKeyUp:
		return t.OnKeyUp(ctx, ev.Code)
	case EventKeyPress:
		return t.OnKeyPress(ctx, ev.Char)
	}
	return nil
}

// OnKeyDown 连续方案：移动键发送 setVelocity(1) + setRotation(angle)
func (t *Translator) OnKeyDown(ctx context.Context, code KeyCode) *Outcome {
	if t.opts.Scheme != SchemeVelocity {
		return nil
	}
	angle, ok := MovementAngle(code)
	if !ok {
		t.metrics.IncUnmapped()
		return nil
	}
	if slices.Contains(t.held, code) {
		if t.opts.SuppressRepeat {
			t.metrics.IncSuppressed()
			return nil
		}
	} else {
		t.held = append(t.held, code)
	}
	return t.dispatch(ctx, VelocityIntent{Velocity: 1, Rotation: angle}.Batch())
}

// OnKeyUp 连续方案：松开移动键发送 setVelocity(0)
// ReleaseAll 策略下若仍有移动键按着，则切回最近按下的那个方向
func (t *Translator) OnKeyUp(ctx context.Context, code KeyCode) *Outcome {
	if t.opts.Scheme != SchemeVelocity {
		return nil
	}
	if _, ok := MovementAngle(code); !ok {
		t.metrics.IncUnmapped()
		return nil
	}
	if i := slices.Index(t.held, code); i >= 0 {
		t.held = slices.Delete(t.held, i, i+1)
	}

	intent := VelocityIntent{}
	if t.opts.ReleasePolicy == ReleaseAll && len(t.held) > 0 {
		angle, _ := MovementAngle(t.held[len(t.held)-1])
		intent = VelocityIntent{Velocity: 1, Rotation: angle}
	}
	return t.dispatch(ctx, intent.Batch())
}

// OnKeyPress 离散方案的单步移动；重生键在两种方案下都有效
func (t *Translator) OnKeyPress(ctx context.Context, ch rune) *Outcome {
	if ch == RespawnKey {
		return t.respawn(ctx)
	}
	if t.opts.Scheme != SchemeStep {
		return nil
	}
	intent, ok := stepIntents[ch]
	if !ok {
		t.metrics.IncUnmapped()
		return nil
	}
	return t.dispatch(ctx, intent.Batch())
}

// respawn 只有派发成功才跳转；返回的结果在跳转完成（或派发失败）后可用
func (t *Translator) respawn(ctx context.Context) *Outcome {
	sent := t.dispatch(ctx, Batch{Respawn()})
	out := newOutcome()
	go func() {
		if err := sent.Wait(ctx); err != nil {
			out.resolve(err)
			return
		}
		if t.nav == nil {
			out.resolve(nil)
			return
		}
		out.resolve(t.nav.Navigate(ctx, "/"))
	}()
	return out
}

func (t *Translator) dispatch(ctx context.Context, b Batch) *Outcome {
	t.metrics.IncSent()
	out := t.ch.Send(ctx, t.session.PlayerID, b)
	go func() {
		// 计数以实际结果为准，不受调用方 ctx 影响
		<-out.Done()
		if err := out.Err(); err != nil {
			t.metrics.IncFailed()
			logging.Log.Warnf("dispatch failed: player=%s batch=%s err=%v", t.session.PlayerID, b, err)
			return
		}
		t.metrics.IncSucceeded()
	}()
	return out
}
