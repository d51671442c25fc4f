package pricing

import (
	"math"
	"testing"
	"time"
)

const tol = 1e-6

func TestFairValue_ClosedForm(t *testing.T) {
	tests := []struct {
		name                    string
		spot, strike, hours, iv float64
		want                    float64
	}{
		{"in the money", 100000, 99000, 24, 52, 0.6389462803},
		{"at the money", 100000, 100000, 24, 52, 0.4945709533},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FairValue(tt.spot, tt.strike, tt.hours, tt.iv, 0)
			if math.Abs(got-tt.want) > tol {
				t.Errorf("FairValue = %.10f, want %.10f", got, tt.want)
			}
		})
	}
}

func TestFairValue_AtTheMoneyMatchesDrift(t *testing.T) {
	sigma, hours := 0.52, 24.0
	want := NormCDF(-0.5 * sigma * math.Sqrt(hours/HoursPerYear))

	got := FairValue(50000, 50000, hours, sigma*100, 0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("FairValue(S==K) = %v, want %v", got, want)
	}
	if got >= 0.5 {
		t.Errorf("FairValue(S==K) = %v, want slightly below 0.5", got)
	}
}

func TestFairValue_IgnoresRiskFreeRate(t *testing.T) {
	a := FairValue(100000, 99000, 24, 52, 0)
	b := FairValue(100000, 99000, 24, 52, 0.05)
	if a != b {
		t.Errorf("risk-free rate changed result: %v vs %v", a, b)
	}
}

func TestFairValue_NonIncreasingInStrike(t *testing.T) {
	prev := 1.0
	for strike := 90000.0; strike <= 110000; strike += 250 {
		got := FairValue(100000, strike, 12, 52, 0)
		if got > prev+1e-15 {
			t.Fatalf("FairValue(K=%v) = %v > previous %v", strike, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("FairValue(K=%v) = %v outside [0,1]", strike, got)
		}
		prev = got
	}
}

func TestFairValue_Degenerate(t *testing.T) {
	tests := []struct {
		name                    string
		spot, strike, hours, iv float64
		want                    float64
	}{
		{"expired above strike", 101, 100, 0, 52, 1},
		{"expired at strike", 100, 100, 0, 52, 1},
		{"expired below strike", 99, 100, 0, 52, 0},
		{"negative hours", 101, 100, -3, 52, 1},
		{"zero vol above", 101, 100, 24, 0, 1},
		{"zero vol below", 99, 100, 24, 0, 0},
		{"zero spot", 0, 100, 24, 52, 0},
		{"negative strike", 100, -1, 24, 52, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FairValue(tt.spot, tt.strike, tt.hours, tt.iv, 0); got != tt.want {
				t.Errorf("FairValue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormCDF(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{0, 0.5},
		{1, 0.8413447461},
		{-1, 0.1586552539},
		{1.96, 0.9750021049},
	}

	for _, tt := range tests {
		if got := NormCDF(tt.x); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormCDF(%v) = %.10f, want %.10f", tt.x, got, tt.want)
		}
	}
}

func TestTimeToExpiry(t *testing.T) {
	now := time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)

	if got := TimeToExpiry(now.Add(90*time.Minute), now); got != 1.5 {
		t.Errorf("TimeToExpiry(+90m) = %v, want 1.5", got)
	}
	if got := TimeToExpiry(now.Add(-time.Hour), now); got != 0 {
		t.Errorf("TimeToExpiry(past) = %v, want 0", got)
	}
	if got := TimeToExpiry(now, now); got != 0 {
		t.Errorf("TimeToExpiry(now) = %v, want 0", got)
	}
}
