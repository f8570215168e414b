package server

import (
	"context"
	"time"
)

// StartTicker 启动世界的 Tick 循环（单协程推进世界），ctx 结束时退出
func (w *World) StartTicker(ctx context.Context) {
	if w.tickerStarted {
		return
	}
	w.tickerStarted = true
	go func() {
		ticker := time.NewTicker(w.tickInterval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				w.Tick(now.Sub(last).Seconds(), now)
				last = now
			}
		}
	}()
}

// Tick 核心循环：处理输入 → 更新世界 → 广播结果
func (w *World) Tick(dt float64, now time.Time) {
	start := time.Now()
	w.ProcessInputs()
	w.UpdateWorld(dt, now)
	w.Broadcast()
	w.mu.Lock()
	w.tickSeq++
	w.mu.Unlock()
	w.metrics.AddTick(time.Since(start).Nanoseconds())
}
