package server

import (
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"keyrelay/logging"
)

// deadRetention 死亡玩家保留多久再移除（让客户端还能查到最终状态）
const deadRetention = 10 * time.Second

// Config 世界参数
type Config struct {
	Width       float64
	Height      float64
	MaxVelocity float64
	Step        float64
	Tick        time.Duration
	InputBuffer int
}

// World 世界：权威状态维护在内存，单协程 Tick 推进
// HTTP 处理函数只读快照或投递输入，状态修改都在 Tick 中进行
type World struct {
	mu sync.Mutex

	Players   map[PlayerID]*Player
	inputChan chan Input

	// 配置：世界边界、速度上限与单步步长；admin 接口可热更新
	width            float64
	height           float64
	maxVelocity      float64
	step             float64
	simulateDropProb float64

	tickInterval  time.Duration
	tickerStarted bool
	tickSeq       int64
	metrics       *Metrics
}

// NewWorld 创建世界，初始化数据结构
func NewWorld(cfg Config) *World {
	buf := cfg.InputBuffer
	if buf <= 0 {
		buf = 256
	}
	tick := cfg.Tick
	if tick <= 0 {
		tick = 30 * time.Millisecond
	}
	return &World{
		Players:      make(map[PlayerID]*Player),
		inputChan:    make(chan Input, buf), // 足够缓冲，避免 HTTP 阻塞影响 Tick
		width:        cfg.Width,
		height:       cfg.Height,
		maxVelocity:  cfg.MaxVelocity,
		step:         cfg.Step,
		tickInterval: tick,
		metrics:      &Metrics{},
	}
}

func (w *World) Metrics() *Metrics { return w.metrics }

// Spawn 在世界中心生成新玩家
func (w *World) Spawn() *Player {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := &Player{
		ID: PlayerID(uuid.NewString()),
		X:  w.width / 2,
		Y:  w.height / 2,
	}
	w.Players[p.ID] = p
	w.metrics.IncSpawned()
	logging.Log.Infof("player spawned: id=%s", p.ID)
	return p
}

// Lookup 返回玩家当前状态的副本
func (w *World) Lookup(id PlayerID) (Player, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.Players[id]
	if !ok {
		return Player{}, false
	}
	cp := *p
	cp.watchers = nil
	return cp, true
}

// OnInput 入站输入（不立即改变状态），等下一次 Tick 处理
// 通道满时返回 false，由调用方回应忙
func (w *World) OnInput(in Input) bool {
	select {
	case w.inputChan <- in:
		w.metrics.IncAccepted()
		return true
	default:
		w.metrics.IncChanFullDiscarded()
		return false
	}
}

// ProcessInputs 处理当前帧的所有输入（非阻塞 drain），同一批次内按顺序应用
func (w *World) ProcessInputs() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for {
		select {
		case in := <-w.inputChan:
			p, ok := w.Players[in.PlayerID]
			if !ok {
				w.metrics.IncUnknownPlayer()
				continue
			}
			for _, op := range in.Ops {
				w.apply(p, op)
			}
		default:
			return
		}
	}
}

// UpdateWorld 按速度与朝向推进位置，并移除死亡过久的玩家
func (w *World) UpdateWorld(dt float64, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, p := range w.Players {
		if p.Dead {
			if now.Sub(p.DeadSince) > deadRetention {
				w.removeLocked(id)
			}
			continue
		}
		if p.Velocity != 0 {
			p.X += dt * p.Velocity * math.Cos(p.Direction)
			p.Y += dt * p.Velocity * math.Sin(p.Direction)
			w.clamp(p)
		}
	}
}

// Broadcast 将每个玩家的状态推送给订阅者（文本 JSON）
func (w *World) Broadcast() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.Players {
		if len(p.watchers) == 0 {
			continue
		}
		b, _ := json.Marshal(p.State())
		for _, c := range p.watchers {
			c.Enqueue(b)
		}
	}
}

// Watch 登记状态订阅；玩家不存在时返回 false
func (w *World) Watch(id PlayerID, c *ClientConn) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.Players[id]
	if !ok {
		return false
	}
	p.watchers = append(p.watchers, c)
	return true
}

// RequestLeave 取消订阅并关闭连接
func (w *World) RequestLeave(id PlayerID, c *ClientConn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.Players[id]; ok {
		for i, x := range p.watchers {
			if x == c {
				p.watchers = append(p.watchers[:i], p.watchers[i+1:]...)
				break
			}
		}
	}
	c.Close()
}

func (w *World) removeLocked(id PlayerID) {
	p, ok := w.Players[id]
	if !ok {
		return
	}
	for _, c := range p.watchers {
		c.Close()
	}
	delete(w.Players, id)
	logging.Log.Infof("player removed: id=%s", id)
}

// apply 执行一条命令；死亡玩家只接受重生（已死亡时为 no-op）
func (w *World) apply(p *Player, op Op) {
	if p.Dead {
		return
	}
	switch op.Kind {
	case OpSetVelocity:
		p.Velocity = w.maxVelocity * math.Max(0, math.Min(op.V, 1))
	case OpSetRotation:
		p.Direction = op.V
	case OpMove:
		p.X += float64(op.DX) * w.step
		p.Y += float64(op.DY) * w.step
		w.clamp(p)
	case OpRespawn:
		p.Die(time.Now())
		logging.Log.Infof("player died on request: id=%s", p.ID)
	}
}

// clamp 越界裁剪
func (w *World) clamp(p *Player) {
	p.X = math.Max(0, math.Min(p.X, w.width))
	p.Y = math.Max(0, math.Min(p.Y, w.height))
}
