package server

import (
	"errors"
	"fmt"

	"keyrelay/protocol"
)

var errEmptyInput = errors.New("empty input")

// OpKind 服务端解释的命令类型
type OpKind int

const (
	OpSetVelocity OpKind = iota + 1
	OpSetRotation
	OpMove
	OpRespawn
)

// Op 一条待应用的命令
type Op struct {
	Kind   OpKind
	V      float64
	DX, DY int
}

// Input 客户端输入（意图），由服务端在 Tick 中按顺序应用
type Input struct {
	PlayerID PlayerID
	Ops      []Op
}

// DecodeOps 把两种载荷形态统一成命令序列，保持原有顺序
// 示例：{"commands":[{"m":"setVelocity","v":1}]} 或 {"action":"move","dx":1}
func DecodeOps(env protocol.Envelope) ([]Op, error) {
	if len(env.Commands) > 0 {
		ops := make([]Op, 0, len(env.Commands))
		for _, c := range env.Commands {
			switch c.M {
			case protocol.MethodSetVelocity:
				ops = append(ops, Op{Kind: OpSetVelocity, V: c.V})
			case protocol.MethodSetRotation:
				ops = append(ops, Op{Kind: OpSetRotation, V: c.V})
			case protocol.MethodRespawn:
				ops = append(ops, Op{Kind: OpRespawn})
			default:
				return nil, fmt.Errorf("unknown command %q", c.M)
			}
		}
		return ops, nil
	}
	switch env.Action {
	case "":
		return nil, errEmptyInput
	case protocol.ActionMove:
		return []Op{{Kind: OpMove, DX: clampUnit(env.DX), DY: clampUnit(env.DY)}}, nil
	case protocol.ActionRespawn:
		return []Op{{Kind: OpRespawn}}, nil
	}
	return nil, fmt.Errorf("unknown action %q", env.Action)
}

func clampUnit(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
