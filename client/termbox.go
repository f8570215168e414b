package client

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nsf/termbox-go"

	"keyrelay/logging"
)

// OpenTerminal 初始化 termbox 并报告终端尺寸；返回的 close 恢复终端
func OpenTerminal() (Viewport, func(), error) {
	if err := termbox.Init(); err != nil {
		return Viewport{}, nil, fmt.Errorf("init terminal: %w", err)
	}
	w, h := termbox.Size()
	return Viewport{Width: w, Height: h}, termbox.Close, nil
}

// 需大于系统自动重复的首次延迟（X11 默认 660ms），否则按住时会在
// 重复开始前被误判为松开
const defaultReleaseAfter = 750 * time.Millisecond

// releaseTracker 终端只上报按下（含自动重复），松开需要推断：
// 超过 after 没有再收到同一键，就视为已松开
type releaseTracker struct {
	after time.Duration
	last  map[KeyCode]time.Time
}

func newReleaseTracker(after time.Duration) *releaseTracker {
	if after <= 0 {
		after = defaultReleaseAfter
	}
	return &releaseTracker{after: after, last: make(map[KeyCode]time.Time)}
}

// press 记录一次按下，首次按下返回 true
func (r *releaseTracker) press(code KeyCode, now time.Time) bool {
	_, held := r.last[code]
	r.last[code] = now
	return !held
}

// expire 返回已推断为松开的键（按名称排序），并从记录中移除
func (r *releaseTracker) expire(now time.Time) []KeyCode {
	var out []KeyCode
	for code, t := range r.last {
		if now.Sub(t) >= r.after {
			out = append(out, code)
		}
	}
	slices.Sort(out)
	for _, code := range out {
		delete(r.last, code)
	}
	return out
}

// TermboxSource 基于 termbox 的按键源：字符键产生 Press，
// 移动键额外产生 Down 与推断出的 Up
type TermboxSource struct {
	events  chan KeyEvent
	tracker *releaseTracker
}

func NewTermboxSource(releaseAfter time.Duration) *TermboxSource {
	return &TermboxSource{
		events:  make(chan KeyEvent, 64),
		tracker: newReleaseTracker(releaseAfter),
	}
}

func (s *TermboxSource) Events() <-chan KeyEvent { return s.events }

// Run 读取终端事件直到 Esc/Ctrl-C 或 ctx 结束；结束时关闭事件通道
// 调用前必须已经 OpenTerminal
func (s *TermboxSource) Run(ctx context.Context) {
	defer close(s.events)

	raw := make(chan termbox.Event)
	go func() {
		for {
			ev := termbox.PollEvent()
			select {
			case raw <- ev:
			case <-ctx.Done():
				return
			}
			if ev.Type == termbox.EventInterrupt {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.tracker.after / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			termbox.Interrupt()
			return
		case now := <-ticker.C:
			for _, code := range s.tracker.expire(now) {
				s.emit(ctx, Up(code))
			}
		case ev := <-raw:
			out, quit := s.translate(ev, time.Now())
			for _, ke := range out {
				s.emit(ctx, ke)
			}
			if quit {
				return
			}
		}
	}
}

func (s *TermboxSource) emit(ctx context.Context, ev KeyEvent) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

// translate 把一个 termbox 事件翻译成按键事件；quit 表示用户请求退出
func (s *TermboxSource) translate(ev termbox.Event, now time.Time) (out []KeyEvent, quit bool) {
	switch ev.Type {
	case termbox.EventInterrupt:
		return nil, true
	case termbox.EventError:
		logging.Log.Warnf("terminal event error: %v", ev.Err)
		return nil, false
	case termbox.EventKey:
	default:
		return nil, false
	}
	if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC {
		return nil, true
	}
	if ev.Ch == 0 {
		return nil, false
	}
	if code, ok := CodeForRune(ev.Ch); ok && s.tracker.press(code, now) {
		out = append(out, Down(code))
	}
	out = append(out, Press(ev.Ch))
	return out, false
}

// TermboxScreen 在终端上绘制状态行；绘制调用串行化
type TermboxScreen struct {
	mu sync.Mutex
}

func (s *TermboxScreen) Show(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	for i, line := range st.Lines() {
		drawText(0, i, line)
	}
	_ = termbox.Flush()
}

func drawText(x, y int, text string) {
	for _, r := range text {
		termbox.SetCell(x, y, r, termbox.ColorDefault, termbox.ColorDefault)
		x++
	}
}
