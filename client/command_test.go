package client

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestIntentBatches(t *testing.T) {
	go1 := VelocityIntent{Velocity: 1, Rotation: 2}.Batch()
	if len(go1) != 2 || go1[0] != SetVelocity(1) || go1[1] != SetRotation(2) {
		t.Fatalf("expected velocity before rotation, got %s", go1)
	}
	stop := VelocityIntent{Rotation: 2}.Batch()
	if len(stop) != 1 || stop[0] != SetVelocity(0) {
		t.Fatalf("expected stop to carry only setVelocity(0), got %s", stop)
	}
	step := StepIntent{DX: -1}.Batch()
	if len(step) != 1 || step[0] != Move(-1, 0) {
		t.Fatalf("unexpected step batch %s", step)
	}
}

func TestBatchValidate(t *testing.T) {
	if err := (Batch{}).Validate(); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected empty batch error, got %v", err)
	}
	if err := (Batch{Move(0, 0)}).Validate(); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected move(0,0) to be rejected, got %v", err)
	}
	if err := (Batch{Move(1, -1), SetVelocity(0)}).Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSessionRequiresPlayerID(t *testing.T) {
	if _, err := NewSession("", Viewport{}); !errors.Is(err, ErrEmptyPlayerID) {
		t.Fatalf("expected empty player id error, got %v", err)
	}
}

func TestMovementAngle(t *testing.T) {
	if a, ok := MovementAngle(KeyA); !ok || a != math.Pi {
		t.Fatalf("unexpected angle for KeyA: %v %v", a, ok)
	}
	if _, ok := MovementAngle("KeyQ"); ok {
		t.Fatalf("KeyQ is not a movement key")
	}
}

func TestParseOptions(t *testing.T) {
	if s, err := ParseScheme("step"); err != nil || s != SchemeStep || s.WireFormat() != WireAction {
		t.Fatalf("unexpected step scheme parse %v %v", s, err)
	}
	if s, err := ParseScheme("velocity"); err != nil || s.WireFormat() != WireCommands {
		t.Fatalf("unexpected velocity scheme parse %v %v", s, err)
	}
	if _, err := ParseScheme("joystick"); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
	if p, err := ParseReleasePolicy("all"); err != nil || p != ReleaseAll {
		t.Fatalf("unexpected release policy parse %v %v", p, err)
	}
	if _, err := ParseReleasePolicy("some"); err == nil {
		t.Fatalf("expected error for unknown release policy")
	}
}

func TestOutcomeWait(t *testing.T) {
	o := newOutcome()
	if o.Err() != nil {
		t.Fatalf("pending outcome should report no error")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := o.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline while pending, got %v", err)
	}

	boom := errors.New("boom")
	o.resolve(boom)
	o.resolve(nil)
	if err := o.Wait(context.Background()); err != boom {
		t.Fatalf("expected first resolution to win, got %v", err)
	}
}
