package pipeline

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func metricFor(t *testing.T, metrics []StageMetric, stage Stage) StageMetric {
	t.Helper()
	for _, m := range metrics {
		if m.Stage == stage {
			return m
		}
	}
	t.Fatalf("no metric for stage %q", stage)
	return StageMetric{}
}

func TestAggregateDwellTwoClients(t *testing.T) {
	// Client A: Lead@day0 -> Checklist Sent@day2 -> Docs Received@day5.
	// Client B: Lead@day0 -> Checklist Sent@day1.
	entries := []HistoryEntry{
		{ClientID: "a", ToStage: StageLead, ChangedAt: day(0)},
		{ClientID: "a", ToStage: StageChecklistSent, ChangedAt: day(2)},
		{ClientID: "a", ToStage: StageDocsReceived, ChangedAt: day(5)},
		{ClientID: "b", ToStage: StageLead, ChangedAt: day(0)},
		{ClientID: "b", ToStage: StageChecklistSent, ChangedAt: day(1)},
	}

	metrics := AggregateDwell(entries)

	lead := metricFor(t, metrics, StageLead)
	if lead.Samples != 2 {
		t.Errorf("Lead samples = %d, want 2", lead.Samples)
	}
	if lead.AvgDays != 1.5 {
		t.Errorf("Lead avg = %v, want 1.5", lead.AvgDays)
	}

	checklist := metricFor(t, metrics, StageChecklistSent)
	if checklist.Samples != 1 {
		t.Errorf("Checklist Sent samples = %d, want 1", checklist.Samples)
	}
	if checklist.AvgDays != 3 {
		t.Errorf("Checklist Sent avg = %v, want 3", checklist.AvgDays)
	}

	// Docs Received is the open-ended final entry for A and never entered
	// by B: no samples, zero average, not an error.
	docs := metricFor(t, metrics, StageDocsReceived)
	if docs.Samples != 0 || docs.AvgDays != 0 {
		t.Errorf("Docs Received = %+v, want 0 samples / 0 avg", docs)
	}
}

func TestAggregateDwellUnsortedInput(t *testing.T) {
	entries := []HistoryEntry{
		{ClientID: "a", ToStage: StageChecklistSent, ChangedAt: day(2)},
		{ClientID: "a", ToStage: StageLead, ChangedAt: day(0)},
	}

	metrics := AggregateDwell(entries)
	lead := metricFor(t, metrics, StageLead)
	if lead.Samples != 1 || lead.AvgDays != 2 {
		t.Errorf("Lead = %+v, want 1 sample / 2.0 avg with unsorted input", lead)
	}
}

func TestAggregateDwellEmptyToStageFallsBackToLead(t *testing.T) {
	entries := []HistoryEntry{
		{ClientID: "a", ToStage: "", ChangedAt: day(0)},
		{ClientID: "a", ToStage: StageChecklistSent, ChangedAt: day(4)},
	}

	metrics := AggregateDwell(entries)
	lead := metricFor(t, metrics, StageLead)
	if lead.Samples != 1 || lead.AvgDays != 4 {
		t.Errorf("Lead = %+v, want the nil-stage sample attributed to Lead", lead)
	}
}

func TestAggregateDwellEmptyHistory(t *testing.T) {
	metrics := AggregateDwell(nil)
	if len(metrics) != len(Catalog()) {
		t.Fatalf("got %d metrics, want one per catalog stage", len(metrics))
	}
	for _, m := range metrics {
		if m.Samples != 0 || m.AvgDays != 0 {
			t.Errorf("stage %q = %+v, want zeroes", m.Stage, m)
		}
	}
}

func TestAggregateDwellClampsNegativeSamples(t *testing.T) {
	// Identical timestamps sort unstably; the sample is zero either way,
	// never negative.
	entries := []HistoryEntry{
		{ClientID: "a", ToStage: StageLead, ChangedAt: day(1)},
		{ClientID: "a", ToStage: StageChecklistSent, ChangedAt: day(1)},
	}

	metrics := AggregateDwell(entries)
	for _, m := range metrics {
		if m.AvgDays < 0 {
			t.Errorf("stage %q has negative average %v", m.Stage, m.AvgDays)
		}
	}
}

func TestAggregateDwellDeterministic(t *testing.T) {
	entries := []HistoryEntry{
		{ClientID: "a", ToStage: StageLead, ChangedAt: day(0)},
		{ClientID: "a", ToStage: StageChecklistSent, ChangedAt: day(2)},
		{ClientID: "b", ToStage: StageLead, ChangedAt: day(0)},
		{ClientID: "b", ToStage: StageDocsReceived, ChangedAt: day(3)},
	}

	first := AggregateDwell(entries)
	for i := 0; i < 10; i++ {
		again := AggregateDwell(entries)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d differs at %d: %+v vs %+v", i, j, first[j], again[j])
			}
		}
	}
}
