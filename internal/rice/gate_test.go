package rice

import (
	"testing"

	"github.com/steveyegge/boardsync/internal/types"
)

func TestGateNumber(t *testing.T) {
	tests := []struct {
		name   string
		next   float64
		stored *float64
		want   bool
	}{
		{"no stored value", 10, nil, true},
		{"identical", 533.33, ptr(533.33), false},
		{"within epsilon", 533.33, ptr(533.3300000001), false},
		{"outside epsilon", 533.33, ptr(533.34), true},
		{"zero over zero", 0, ptr(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := GateNumber(tt.next, tt.stored)
			if d.ShouldWrite != tt.want {
				t.Errorf("ShouldWrite = %v, want %v (%s)", d.ShouldWrite, tt.want, d.Reason)
			}
			if d.Value != tt.next {
				t.Errorf("Value = %v, want %v", d.Value, tt.next)
			}
		})
	}
}

// Writing the same number on two consecutive runs must hit the store once.
func TestGateNumberSecondRunIsNoop(t *testing.T) {
	var stored *float64
	writes := 0
	for run := 0; run < 2; run++ {
		d := GateNumber(533.33, stored)
		if d.ShouldWrite {
			writes++
			v := d.Value
			stored = &v
		}
	}
	if writes != 1 {
		t.Errorf("writes = %d, want 1", writes)
	}
}

func TestGateChoice(t *testing.T) {
	if d := GateChoice("a", nil); !d.ShouldWrite {
		t.Error("GateChoice with no stored value should write")
	}
	if d := GateChoice("a", &types.Choice{OptionID: "a"}); d.ShouldWrite {
		t.Error("GateChoice with same option should not write")
	}
	if d := GateChoice("a", &types.Choice{OptionID: "b", Name: "B"}); !d.ShouldWrite || d.Reason != "changed from B" {
		t.Errorf("GateChoice(changed) = %+v", d)
	}
}

func TestGateTier(t *testing.T) {
	tests := []struct {
		name         string
		next, stored types.Tier
		scoreChanged bool
		want         bool
	}{
		{"fills absence", types.TierLow, types.TierNone, true, true},
		{"differs", types.TierHigh, types.TierLow, true, true},
		{"identical", types.TierHigh, types.TierHigh, true, false},
		{"score unchanged", types.TierHigh, types.TierLow, false, false},
		{"score unchanged fills absence", types.TierLow, types.TierNone, false, true},
		{"no tier", types.TierNone, types.TierLow, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := GateTier(tt.next, tt.stored, tt.scoreChanged)
			if d.ShouldWrite != tt.want {
				t.Errorf("ShouldWrite = %v, want %v (%s)", d.ShouldWrite, tt.want, d.Reason)
			}
		})
	}
}
