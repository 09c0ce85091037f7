package types

import (
	"encoding/json"
	"testing"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{"very_low", TierVeryLow, false},
		{"very-low", TierVeryLow, false},
		{"low", TierLow, false},
		{"medium", TierMedium, false},
		{"high", TierHigh, false},
		{"very-high", TierVeryHigh, false},
		{"urgent", TierUrgent, false},
		{"critical", TierNone, true},
		{"", TierNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTier(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTier(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTier(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTierOrderAndNames(t *testing.T) {
	if !(TierVeryLow < TierLow && TierLow < TierMedium && TierMedium < TierHigh && TierHigh < TierVeryHigh && TierVeryHigh < TierUrgent) {
		t.Error("tiers are not ordered from lowest to highest")
	}
	if TierNone.IsValid() {
		t.Error("TierNone.IsValid() = true")
	}
	for _, tier := range []Tier{TierVeryLow, TierLow, TierMedium, TierHigh, TierVeryHigh, TierUrgent} {
		back, err := ParseTier(tier.String())
		if err != nil || back != tier {
			t.Errorf("ParseTier(%q) = %v, %v", tier.String(), back, err)
		}
	}
}

func TestTierJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Tier Tier `json:"tier"`
	}{TierHigh})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"tier":"high"}` {
		t.Errorf("json = %s", data)
	}
}

func TestFields(t *testing.T) {
	numbers := 0
	for _, f := range AllFields {
		if !f.IsValid() {
			t.Errorf("%s.IsValid() = false", f)
		}
		if f.IsNumber() {
			numbers++
		}
	}
	if numbers != 2 {
		t.Errorf("%d number fields, want reach and rice", numbers)
	}
	if Field("effort").IsValid() {
		t.Error(`Field("effort").IsValid() = true`)
	}
}

func TestValue(t *testing.T) {
	if Undefined.Defined() {
		t.Error("Undefined.Defined() = true")
	}
	v := FromToken(0)
	if !v.Defined() || v.Source != SourceToken {
		t.Errorf("FromToken(0) = %+v, want a defined token value", v)
	}
	if s := FromStore(2.5).String(); s != "2.5 (store)" {
		t.Errorf("FromStore(2.5).String() = %q", s)
	}
	if !PhaseResults.IsValid() || Phase("review").IsValid() {
		t.Error("Phase.IsValid() mismatch")
	}
}
