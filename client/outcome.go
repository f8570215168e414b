package client

import (
	"context"
	"sync"
)

// Outcome 一次异步派发的结果；调用方不必等待
type Outcome struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newOutcome() *Outcome {
	return &Outcome{done: make(chan struct{})}
}

// Resolved 返回已完成的结果
func Resolved(err error) *Outcome {
	o := newOutcome()
	o.resolve(err)
	return o
}

func (o *Outcome) resolve(err error) {
	o.once.Do(func() {
		o.err = err
		close(o.done)
	})
}

// Done 在结果可用时关闭
func (o *Outcome) Done() <-chan struct{} { return o.done }

// Err 仅在 Done 关闭后有意义
func (o *Outcome) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Wait 阻塞直到结果可用或 ctx 结束
func (o *Outcome) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
