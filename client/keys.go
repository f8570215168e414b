package client

import (
	"fmt"
	"math"
)

// KeyCode 物理按键编码（与浏览器 KeyboardEvent.code 同名）
type KeyCode string

const (
	KeyW KeyCode = "KeyW"
	KeyA KeyCode = "KeyA"
	KeyS KeyCode = "KeyS"
	KeyD KeyCode = "KeyD"
)

// RespawnKey 重生字符，两种方案下都有效
const RespawnKey = 'p'

// 移动键 → 朝向；屏幕坐标 y 向下，因此 S 为 π/2
var movementAngles = map[KeyCode]float64{
	KeyD: 0,
	KeyS: math.Pi / 2,
	KeyA: math.Pi,
	KeyW: 3 * math.Pi / 2,
}

// 字符 → 单位位移（离散方案）
var stepIntents = map[rune]StepIntent{
	'w': {DX: 0, DY: -1},
	's': {DX: 0, DY: 1},
	'a': {DX: -1, DY: 0},
	'd': {DX: 1, DY: 0},
}

// 字符 → 物理按键，终端按键源只能拿到字符
var runeCodes = map[rune]KeyCode{
	'w': KeyW, 'W': KeyW,
	'a': KeyA, 'A': KeyA,
	's': KeyS, 'S': KeyS,
	'd': KeyD, 'D': KeyD,
}

// MovementAngle 返回移动键对应的朝向
func MovementAngle(code KeyCode) (float64, bool) {
	a, ok := movementAngles[code]
	return a, ok
}

// CodeForRune 返回字符对应的移动键
func CodeForRune(r rune) (KeyCode, bool) {
	c, ok := runeCodes[r]
	return c, ok
}

// Scheme 输入方案：两者互斥，每个部署只选一个
type Scheme int

const (
	// SchemeVelocity 按下/松开驱动速度与朝向，走 commands 载荷
	SchemeVelocity Scheme = iota
	// SchemeStep 字符键驱动单步移动，走 action 载荷
	SchemeStep
)

func ParseScheme(s string) (Scheme, error) {
	switch s {
	case "velocity":
		return SchemeVelocity, nil
	case "step":
		return SchemeStep, nil
	}
	return 0, fmt.Errorf("unknown scheme %q", s)
}

// WireFormat 方案对应的载荷形态
func (s Scheme) WireFormat() WireFormat {
	if s == SchemeStep {
		return WireAction
	}
	return WireCommands
}

func (s Scheme) String() string {
	if s == SchemeStep {
		return "step"
	}
	return "velocity"
}

// ReleasePolicy 松开移动键时的处理策略
type ReleasePolicy int

const (
	// ReleaseAny 任意移动键松开即停止（即使仍有其他键按着）
	ReleaseAny ReleasePolicy = iota
	// ReleaseAll 仅当所有移动键都松开才停止，否则切回最近按下且仍按着的方向
	ReleaseAll
)

func ParseReleasePolicy(s string) (ReleasePolicy, error) {
	switch s {
	case "any":
		return ReleaseAny, nil
	case "all":
		return ReleaseAll, nil
	}
	return 0, fmt.Errorf("unknown release policy %q", s)
}
