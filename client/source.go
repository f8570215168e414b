package client

import "fmt"

// EventKind 按键事件类型
type EventKind int

const (
	EventKeyDown EventKind = iota + 1
	EventKeyUp
	EventKeyPress
)

func (k EventKind) String() string {
	switch k {
	case EventKeyDown:
		return "down"
	case EventKeyUp:
		return "up"
	case EventKeyPress:
		return "press"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// KeyEvent 宿主投递的原始按键事件；Down/Up 使用 Code，Press 使用 Char
type KeyEvent struct {
	Kind EventKind
	Code KeyCode
	Char rune
}

func Down(code KeyCode) KeyEvent { return KeyEvent{Kind: EventKeyDown, Code: code} }

func Up(code KeyCode) KeyEvent { return KeyEvent{Kind: EventKeyUp, Code: code} }

func Press(ch rune) KeyEvent { return KeyEvent{Kind: EventKeyPress, Char: ch} }

// EventSource 串行投递按键事件；通道关闭表示输入结束
type EventSource interface {
	Events() <-chan KeyEvent
}
