package pipeline

import "sort"

// StageMetric is the average dwell time for one stage, with the number of
// completed samples behind the average.
type StageMetric struct {
	Stage   Stage   `json:"stage"`
	AvgDays float64 `json:"avg_days"`
	Samples int     `json:"samples"`
}

// AggregateDwell computes per-stage average dwell time from the full
// history log. Each consecutive pair of a client's entries yields one
// sample for the stage the client sat in between them; a client's final
// entry is open-ended and contributes nothing. Deterministic for a given
// snapshot.
func AggregateDwell(entries []HistoryEntry) []StageMetric {
	byClient := make(map[string][]HistoryEntry)
	for _, e := range entries {
		byClient[e.ClientID] = append(byClient[e.ClientID], e)
	}

	durations := make(map[Stage][]float64)
	for _, seq := range byClient {
		// Input ordering is not trusted.
		sort.Slice(seq, func(i, j int) bool {
			return seq[i].ChangedAt.Before(seq[j].ChangedAt)
		})
		for i := 0; i+1 < len(seq); i++ {
			stage := seq[i].ToStage
			if stage == "" {
				stage = StageLead
			}
			days := seq[i+1].ChangedAt.Sub(seq[i].ChangedAt).Hours() / 24
			if days < 0 {
				days = 0
			}
			durations[stage] = append(durations[stage], days)
		}
	}

	metrics := make([]StageMetric, 0, len(Catalog()))
	for _, stage := range Catalog() {
		samples := durations[stage]
		var avg float64
		if len(samples) > 0 {
			var sum float64
			for _, d := range samples {
				sum += d
			}
			avg = sum / float64(len(samples))
		}
		metrics = append(metrics, StageMetric{
			Stage:   stage,
			AvgDays: avg,
			Samples: len(samples),
		})
	}
	return metrics
}
