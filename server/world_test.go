package server

import (
	"math"
	"testing"
	"time"

	"keyrelay/protocol"
)

func newTestWorld() *World {
	return NewWorld(Config{Width: 100, Height: 100, MaxVelocity: 10, Step: 2, Tick: 50 * time.Millisecond, InputBuffer: 4})
}

func TestSpawnAtCentre(t *testing.T) {
	w := newTestWorld()
	p := w.Spawn()
	if p.ID == "" {
		t.Fatalf("expected spawned player to have an id")
	}
	if p.X != 50 || p.Y != 50 {
		t.Fatalf("expected spawn at centre, got (%.1f, %.1f)", p.X, p.Y)
	}
	if other := w.Spawn(); other.ID == p.ID {
		t.Fatalf("expected unique ids, both were %q", p.ID)
	}
}

func TestVelocityAndRotationIntegrate(t *testing.T) {
	w := newTestWorld()
	p := w.Spawn()

	w.OnInput(Input{PlayerID: p.ID, Ops: []Op{{Kind: OpSetVelocity, V: 1}, {Kind: OpSetRotation, V: math.Pi / 2}}})
	w.Tick(1, time.Now())

	got, _ := w.Lookup(p.ID)
	if got.Velocity != 10 {
		t.Fatalf("expected velocity scaled to max, got %v", got.Velocity)
	}
	if math.Abs(got.X-50) > 1e-9 || math.Abs(got.Y-60) > 1e-9 {
		t.Fatalf("expected to move down by 10, got (%.3f, %.3f)", got.X, got.Y)
	}

	w.OnInput(Input{PlayerID: p.ID, Ops: []Op{{Kind: OpSetVelocity, V: 0}}})
	w.Tick(1, time.Now())
	stopped, _ := w.Lookup(p.ID)
	if stopped.Velocity != 0 || math.Abs(stopped.Y-60) > 1e-9 {
		t.Fatalf("expected player to stop, got %+v", stopped.State())
	}
}

func TestMoveStepsAndClamps(t *testing.T) {
	w := newTestWorld()
	p := w.Spawn()

	w.OnInput(Input{PlayerID: p.ID, Ops: []Op{{Kind: OpMove, DX: -1}}})
	w.Tick(0, time.Now())
	got, _ := w.Lookup(p.ID)
	if got.X != 48 || got.Y != 50 {
		t.Fatalf("expected one step left, got (%.1f, %.1f)", got.X, got.Y)
	}

	w.OnInput(Input{PlayerID: p.ID, Ops: []Op{{Kind: OpSetVelocity, V: 1}, {Kind: OpSetRotation, V: math.Pi}}})
	w.Tick(100, time.Now())
	got, _ = w.Lookup(p.ID)
	if got.X != 0 {
		t.Fatalf("expected clamp at left edge, got %.1f", got.X)
	}
}

func TestRespawnKillsAndIgnoresLaterMoves(t *testing.T) {
	w := newTestWorld()
	p := w.Spawn()

	w.OnInput(Input{PlayerID: p.ID, Ops: []Op{{Kind: OpRespawn}, {Kind: OpMove, DX: 1}}})
	now := time.Now()
	w.Tick(0, now)

	got, ok := w.Lookup(p.ID)
	if !ok || !got.Dead {
		t.Fatalf("expected player to be dead after respawn request")
	}
	if got.X != 50 {
		t.Fatalf("dead player must not move, got x=%.1f", got.X)
	}

	w.Tick(0, now.Add(deadRetention+time.Second))
	if _, ok := w.Lookup(p.ID); ok {
		t.Fatalf("expected dead player to be removed after retention")
	}
}

func TestInputsForUnknownPlayerAreCounted(t *testing.T) {
	w := newTestWorld()
	w.OnInput(Input{PlayerID: "ghost", Ops: []Op{{Kind: OpMove, DX: 1}}})
	w.Tick(0, time.Now())
	if got := w.Metrics().Snapshot()["unknown_player"].(int64); got != 1 {
		t.Fatalf("expected 1 unknown player input, got %d", got)
	}
}

func TestOnInputFullBuffer(t *testing.T) {
	w := newTestWorld()
	p := w.Spawn()
	for i := 0; i < 4; i++ {
		if !w.OnInput(Input{PlayerID: p.ID, Ops: []Op{{Kind: OpMove, DX: 1}}}) {
			t.Fatalf("input %d should fit in buffer", i)
		}
	}
	if w.OnInput(Input{PlayerID: p.ID, Ops: []Op{{Kind: OpMove, DX: 1}}}) {
		t.Fatalf("expected full buffer to reject input")
	}
	if got := w.Metrics().Snapshot()["chan_full_discarded"].(int64); got != 1 {
		t.Fatalf("expected 1 discarded input, got %d", got)
	}
}

func TestDecodeOps(t *testing.T) {
	ops, err := DecodeOps(protocol.Envelope{Commands: []protocol.Command{
		{M: protocol.MethodSetVelocity, V: 1},
		{M: protocol.MethodSetRotation, V: 2},
	}})
	if err != nil {
		t.Fatalf("decode commands: %v", err)
	}
	if len(ops) != 2 || ops[0].Kind != OpSetVelocity || ops[1].Kind != OpSetRotation || ops[1].V != 2 {
		t.Fatalf("unexpected ops %+v", ops)
	}

	ops, err = DecodeOps(protocol.Envelope{Action: protocol.ActionMove, DX: 5, DY: -3})
	if err != nil {
		t.Fatalf("decode move: %v", err)
	}
	if ops[0].Kind != OpMove || ops[0].DX != 1 || ops[0].DY != -1 {
		t.Fatalf("expected move clamped to unit step, got %+v", ops[0])
	}

	if _, err := DecodeOps(protocol.Envelope{}); err == nil {
		t.Fatalf("expected error for empty envelope")
	}
	if _, err := DecodeOps(protocol.Envelope{Action: "fly"}); err == nil {
		t.Fatalf("expected error for unknown action")
	}
	if _, err := DecodeOps(protocol.Envelope{Commands: []protocol.Command{{M: "teleport"}}}); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}
