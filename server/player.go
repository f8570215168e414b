package server

import (
	"time"

	"keyrelay/protocol"
)

// PlayerID 表示玩家唯一标识
type PlayerID string

// Player 世界内的玩家实体（服务端权威状态）
type Player struct {
	ID        PlayerID
	X         float64
	Y         float64
	Velocity  float64 // 当前速度，单位/秒
	Direction float64 // 朝向（弧度），屏幕坐标 y 向下
	Dead      bool
	DeadSince time.Time

	watchers []*ClientConn // 订阅该玩家状态的连接
}

func (p *Player) State() protocol.PlayerState {
	return protocol.PlayerState{
		ID:        string(p.ID),
		X:         p.X,
		Y:         p.Y,
		Velocity:  p.Velocity,
		Direction: p.Direction,
		Dead:      p.Dead,
	}
}

// Die 标记死亡并停止移动；客户端随后会重新加入
func (p *Player) Die(now time.Time) {
	if p.Dead {
		return
	}
	p.Dead = true
	p.DeadSince = now
	p.Velocity = 0
}
