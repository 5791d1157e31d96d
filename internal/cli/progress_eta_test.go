package cli

import (
	"strings"
	"testing"
	"time"
)

func TestUpdateWithETA(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(2)

	progress, eta := p.UpdateWithETA(0, 0.25)
	if progress != 0.125 {
		t.Errorf("progress = %v, want 0.125", progress)
	}
	if eta != 0 {
		t.Errorf("eta during warm-up = %v, want 0", eta)
	}
	if progress, _ = p.UpdateWithETA(1, 0.5); progress != 0.375 {
		t.Errorf("progress = %v, want 0.375", progress)
	}
}

func TestETAAfterWarmUp(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(1)
	p.startTime = time.Now().Add(-time.Second)
	p.lastUpdate = p.startTime

	_, eta := p.UpdateWithETA(0, 0.5)
	// Half done after one second: about one second left.
	if eta < 900*time.Millisecond || eta > 1100*time.Millisecond {
		t.Errorf("eta = %v, want about 1s", eta)
	}
	if got := p.GetETA(); got != eta {
		t.Errorf("GetETA() = %v, want %v", got, eta)
	}

	p.Update(0, 1.0)
	if got := p.GetETA(); got != 0 {
		t.Errorf("GetETA() when done = %v, want 0", got)
	}
}

func TestETACapping(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(1)
	p.startTime = time.Now().Add(-48 * time.Hour)
	p.lastUpdate = p.startTime

	if _, eta := p.UpdateWithETA(0, 0.01); eta != maxETA {
		t.Errorf("eta = %v, want cap %v", eta, maxETA)
	}
}

func TestFormatETA(t *testing.T) {
	t.Parallel()
	tests := []struct {
		eta  time.Duration
		want string
	}{
		{0, "calculating..."},
		{-time.Second, "calculating..."},
		{500 * time.Millisecond, "< 1s"},
		{42 * time.Second, "42s"},
		{2 * time.Minute, "2m"},
		{150 * time.Second, "2m30s"},
		{time.Hour, "1h"},
		{75 * time.Minute, "1h15m"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.eta); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.eta, got, tt.want)
		}
	}
}

func TestFormatProgressBarWithETA(t *testing.T) {
	t.Parallel()
	got := FormatProgressBarWithETA(0.5, 90*time.Second, 4)
	if got != " 50.00% [██░░] ETA: 1m30s" {
		t.Errorf("FormatProgressBarWithETA() = %q", got)
	}
	if !strings.HasPrefix(FormatProgressBarWithETA(1, 0, 2), "100.00%") {
		t.Error("full progress should render as 100.00%")
	}
}
