package client

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBatch         = errors.New("empty command batch")
	ErrInvalidMove        = errors.New("invalid move step")
	ErrEmptyPlayerID      = errors.New("empty player id")
	ErrUnsupportedCommand = errors.New("command not supported by wire format")
	ErrTransport          = errors.New("transport failure")
	ErrNoLocation         = errors.New("join response without player location")
)

// CommandKind 发往玩家状态服务的命令类型
type CommandKind int

const (
	CmdMove CommandKind = iota + 1
	CmdSetVelocity
	CmdSetRotation
	CmdRespawn
)

func (k CommandKind) String() string {
	switch k {
	case CmdMove:
		return "move"
	case CmdSetVelocity:
		return "setVelocity"
	case CmdSetRotation:
		return "setRotation"
	case CmdRespawn:
		return "respawn"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command 单条命令；Move 使用 DX/DY，SetVelocity/SetRotation 使用 Value
type Command struct {
	Kind  CommandKind
	DX    int
	DY    int
	Value float64
}

func Move(dx, dy int) Command { return Command{Kind: CmdMove, DX: dx, DY: dy} }

func SetVelocity(v float64) Command { return Command{Kind: CmdSetVelocity, Value: v} }

func SetRotation(v float64) Command { return Command{Kind: CmdSetRotation, Value: v} }

func Respawn() Command { return Command{Kind: CmdRespawn} }

func (c Command) String() string {
	switch c.Kind {
	case CmdMove:
		return fmt.Sprintf("move(%d,%d)", c.DX, c.DY)
	case CmdSetVelocity, CmdSetRotation:
		return fmt.Sprintf("%s(%g)", c.Kind, c.Value)
	default:
		return c.Kind.String() + "()"
	}
}

func (c Command) validate() error {
	if c.Kind != CmdMove {
		return nil
	}
	if !unitStep(c.DX) || !unitStep(c.DY) || (c.DX == 0 && c.DY == 0) {
		return fmt.Errorf("%w: %s", ErrInvalidMove, c)
	}
	return nil
}

func unitStep(v int) bool { return v >= -1 && v <= 1 }

// Batch 一次请求中一起发送的有序命令序列
type Batch []Command

// Validate 批次非空，且 move 的步长只能是单位向量（不允许 (0,0)）
func (b Batch) Validate() error {
	if len(b) == 0 {
		return ErrEmptyBatch
	}
	for _, c := range b {
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (b Batch) String() string {
	s := "["
	for i, c := range b {
		if i > 0 {
			s += " "
		}
		s += c.String()
	}
	return s + "]"
}

// StepIntent 离散意图：一次性的单位位移
type StepIntent struct {
	DX, DY int
}

func (i StepIntent) Batch() Batch { return Batch{Move(i.DX, i.DY)} }

// VelocityIntent 连续意图：速度 + 朝向（弧度）；Velocity 为 0 表示停止
type VelocityIntent struct {
	Velocity float64
	Rotation float64
}

// Batch 先设速度再设朝向；停止时只发 setVelocity(0)
func (i VelocityIntent) Batch() Batch {
	if i.Velocity == 0 {
		return Batch{SetVelocity(0)}
	}
	return Batch{SetVelocity(i.Velocity), SetRotation(i.Rotation)}
}
