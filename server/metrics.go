package server

import (
	"sync/atomic"
)

// Metrics 记录世界运行期的关键指标（用于监控与调试）
type Metrics struct {
	TickCount         int64 // 统计的 Tick 次数
	PlayersSpawned    int64 // 生成的玩家数
	InputsAccepted    int64 // 被接受的输入批次数
	InputsRejected    int64 // 载荷无法解析的请求数
	UnknownPlayer     int64 // 目标玩家不存在的输入数
	DropsSimulated    int64 // 因模拟丢包被拒绝的输入数
	ChanFullDiscarded int64 // 因通道满被拒绝的输入数
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
}

func (m *Metrics) IncSpawned()           { atomic.AddInt64(&m.PlayersSpawned, 1) }
func (m *Metrics) IncAccepted()          { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *Metrics) IncRejected()          { atomic.AddInt64(&m.InputsRejected, 1) }
func (m *Metrics) IncUnknownPlayer()     { atomic.AddInt64(&m.UnknownPlayer, 1) }
func (m *Metrics) IncDropsSimulated()    { atomic.AddInt64(&m.DropsSimulated, 1) }
func (m *Metrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"players_spawned":     atomic.LoadInt64(&m.PlayersSpawned),
		"inputs_accepted":     atomic.LoadInt64(&m.InputsAccepted),
		"inputs_rejected":     atomic.LoadInt64(&m.InputsRejected),
		"unknown_player":      atomic.LoadInt64(&m.UnknownPlayer),
		"drops_simulated":     atomic.LoadInt64(&m.DropsSimulated),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"avg_tick_ms":         avgMs,
	}
}
