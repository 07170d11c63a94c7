package pipeline

import "time"

// HistoryEntry is the pure-computation view of one stage transition record.
type HistoryEntry struct {
	ClientID  string
	FromStage *Stage
	ToStage   Stage
	ChangedAt time.Time
}

// Tier is the urgency bucket the dashboard renders for a dwell duration.
type Tier string

const (
	TierNeutral Tier = "neutral" // 0-2 days
	TierWarning Tier = "warning" // 3-6 days
	TierUrgent  Tier = "urgent"  // 7+ days
)

// EnteredCurrentStageAt returns when the client entered its current stage:
// the latest changed_at across its history, or the fallback timestamp
// (the client's updated_at / created_at) when no history exists.
func EnteredCurrentStageAt(entries []HistoryEntry, fallback time.Time) time.Time {
	if len(entries) == 0 {
		return fallback
	}
	entered := entries[0].ChangedAt
	for _, e := range entries[1:] {
		if e.ChangedAt.After(entered) {
			entered = e.ChangedAt
		}
	}
	return entered
}

// DaysInStage returns whole days elapsed since enteredAt, floored at zero.
func DaysInStage(enteredAt, now time.Time) int {
	if enteredAt.IsZero() {
		return 0
	}
	days := int(now.Sub(enteredAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// TierFor buckets a days-in-stage value for presentation.
func TierFor(days int) Tier {
	switch {
	case days >= 7:
		return TierUrgent
	case days >= 3:
		return TierWarning
	default:
		return TierNeutral
	}
}
