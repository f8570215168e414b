package client

import "sync/atomic"

// Metrics 记录派发情况（用于退出时输出与调试）
type Metrics struct {
	BatchesSent       int64 // 交给命令通道的批次数
	BatchesSucceeded  int64 // 服务端返回 2xx 的批次数
	BatchesFailed     int64 // 网络错误或非 2xx 的批次数
	UnmappedInputs    int64 // 未映射的按键事件
	RepeatsSuppressed int64 // 因自动重复被忽略的按下事件
}

func (m *Metrics) IncSent()       { atomic.AddInt64(&m.BatchesSent, 1) }
func (m *Metrics) IncSucceeded()  { atomic.AddInt64(&m.BatchesSucceeded, 1) }
func (m *Metrics) IncFailed()     { atomic.AddInt64(&m.BatchesFailed, 1) }
func (m *Metrics) IncUnmapped()   { atomic.AddInt64(&m.UnmappedInputs, 1) }
func (m *Metrics) IncSuppressed() { atomic.AddInt64(&m.RepeatsSuppressed, 1) }

// Snapshot 返回只读副本
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"batches_sent":       atomic.LoadInt64(&m.BatchesSent),
		"batches_succeeded":  atomic.LoadInt64(&m.BatchesSucceeded),
		"batches_failed":     atomic.LoadInt64(&m.BatchesFailed),
		"unmapped_inputs":    atomic.LoadInt64(&m.UnmappedInputs),
		"repeats_suppressed": atomic.LoadInt64(&m.RepeatsSuppressed),
	}
}
