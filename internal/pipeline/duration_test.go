package pipeline

import (
	"testing"
	"time"
)

var durationNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestEnteredCurrentStageAtUsesLatestEntry(t *testing.T) {
	entries := []HistoryEntry{
		{ClientID: "c1", ToStage: StageChecklistSent, ChangedAt: durationNow.AddDate(0, 0, -10)},
		{ClientID: "c1", ToStage: StageDocsReceived, ChangedAt: durationNow.AddDate(0, 0, -3)},
		{ClientID: "c1", ToStage: StageLead, ChangedAt: durationNow.AddDate(0, 0, -20)},
	}
	fallback := durationNow.AddDate(0, 0, -1)

	got := EnteredCurrentStageAt(entries, fallback)
	want := durationNow.AddDate(0, 0, -3)
	if !got.Equal(want) {
		t.Errorf("EnteredCurrentStageAt = %v, want %v", got, want)
	}
}

func TestEnteredCurrentStageAtFallsBackWithoutHistory(t *testing.T) {
	fallback := durationNow.AddDate(0, 0, -5)
	got := EnteredCurrentStageAt(nil, fallback)
	if !got.Equal(fallback) {
		t.Errorf("EnteredCurrentStageAt with no history = %v, want fallback %v", got, fallback)
	}
}

func TestDaysInStage(t *testing.T) {
	tests := []struct {
		name      string
		enteredAt time.Time
		want      int
	}{
		{"exactly three days", durationNow.AddDate(0, 0, -3), 3},
		{"same instant", durationNow, 0},
		{"partial day floors", durationNow.Add(-36 * time.Hour), 1},
		{"future entry clamps to zero", durationNow.Add(12 * time.Hour), 0},
		{"one week", durationNow.AddDate(0, 0, -7), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysInStage(tt.enteredAt, durationNow); got != tt.want {
				t.Errorf("DaysInStage = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysInStageZeroTime(t *testing.T) {
	if got := DaysInStage(time.Time{}, durationNow); got != 0 {
		t.Errorf("DaysInStage(zero) = %d, want 0", got)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		days int
		want Tier
	}{
		{0, TierNeutral},
		{1, TierNeutral},
		{2, TierNeutral},
		{3, TierWarning},
		{4, TierWarning},
		{6, TierWarning},
		{7, TierUrgent},
		{30, TierUrgent},
	}

	for _, tt := range tests {
		if got := TierFor(tt.days); got != tt.want {
			t.Errorf("TierFor(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestThreeDaysIsWarning(t *testing.T) {
	entered := durationNow.AddDate(0, 0, -3)
	days := DaysInStage(entered, durationNow)
	if days != 3 {
		t.Fatalf("DaysInStage = %d, want 3", days)
	}
	if tier := TierFor(days); tier != TierWarning {
		t.Errorf("TierFor(3) = %q, want %q", tier, TierWarning)
	}
}
