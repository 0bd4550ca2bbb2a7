package service

import (
	"testing"
	"time"

	"patitas_backend/platform/apperr"
)

var testNow = time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		name      string
		visitDate string
		slotTime  string
		wantKind  apperr.Kind
	}{
		{"valid morning slot", "2026-03-11", "09:00", apperr.KindUnknown},
		{"valid last slot", "2026-03-11", "17:30", apperr.KindUnknown},
		{"valid one month ahead", "2026-04-10", "10:30", apperr.KindUnknown},
		{"malformed date", "11-03-2026", "09:00", apperr.KindBadRequest},
		{"malformed time", "2026-03-11", "9am", apperr.KindBadRequest},
		{"off grid minutes", "2026-03-11", "09:15", apperr.KindBadRequest},
		{"before opening", "2026-03-11", "08:30", apperr.KindBadRequest},
		{"after closing", "2026-03-11", "18:00", apperr.KindBadRequest},
		{"same day future slot", "2026-03-10", "15:00", apperr.KindUnknown},
		{"same day past slot", "2026-03-10", "10:30", apperr.KindValidation},
		{"same day slot starting now", "2026-03-10", "11:00", apperr.KindValidation},
		{"past date", "2026-03-01", "10:00", apperr.KindValidation},
		{"beyond one month", "2026-04-11", "10:00", apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := parseSlot(testNow, tt.visitDate, tt.slotTime)
			if tt.wantKind == apperr.KindUnknown {
				if err != nil {
					t.Fatalf("parseSlot() error = %v", err)
				}
				if start.Format("2006-01-02 15:04") != tt.visitDate+" "+tt.slotTime {
					t.Errorf("slot start = %v, want %s %s", start, tt.visitDate, tt.slotTime)
				}
				return
			}
			if err == nil {
				t.Fatal("parseSlot() expected error, got nil")
			}
			if kind := apperr.GetKind(err); kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", kind, tt.wantKind)
			}
		})
	}
}

func TestSlotGrid(t *testing.T) {
	grid := slotGrid()
	if len(grid) != 18 {
		t.Fatalf("grid size = %d, want 18", len(grid))
	}
	if grid[0] != "09:00" {
		t.Errorf("first slot = %s, want 09:00", grid[0])
	}
	if grid[len(grid)-1] != "17:30" {
		t.Errorf("last slot = %s, want 17:30", grid[len(grid)-1])
	}
}
