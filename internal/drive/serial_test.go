package drive

import (
	"context"
	"testing"

	"slate/internal/config"
)

func TestMicrometersScalesAndRounds(t *testing.T) {
	tests := []struct {
		mm   float64
		want int
	}{
		{0, 0},
		{450, 450_000},
		{-90, -90_000},
		{4.9995, 5000},
		{0.0004, 0},
	}
	for _, tc := range tests {
		if got := Micrometers(tc.mm); got != tc.want {
			t.Errorf("Micrometers(%v) = %d, want %d", tc.mm, got, tc.want)
		}
	}
}

func TestFormatMoveUsesIntegerUnits(t *testing.T) {
	got := formatMove("MOVE", 450, -90, 0)
	want := "MOVE 450000 -90000 0"
	if got != want {
		t.Fatalf("formatMove = %q, want %q", got, want)
	}
}

func TestStopBeforeSessionLatchesAbort(t *testing.T) {
	c := NewSerialController(config.Drive{Port: "/dev/null", BaudRate: 115200}, config.Motion{}, nil)
	if c.Aborted() {
		t.Fatal("fresh controller must not be aborted")
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop without session: %v", err)
	}
	if !c.Aborted() {
		t.Fatal("stop must latch the abort flag even without a session")
	}
	if err := c.Resume(context.Background()); err != nil {
		t.Fatalf("resume without session: %v", err)
	}
	if c.Aborted() {
		t.Fatal("resume must clear the abort flag")
	}
}

func TestTerminateWithoutSessionIsNoop(t *testing.T) {
	c := NewSerialController(config.Drive{Port: "/dev/null", BaudRate: 115200}, config.Motion{}, nil)
	for i := 0; i < 2; i++ {
		if err := c.Terminate(context.Background(), true); err != nil {
			t.Fatalf("terminate #%d: %v", i+1, err)
		}
	}
}
