package pipeline

import "testing"

func TestNormalizeKnownStages(t *testing.T) {
	for _, stage := range Catalog() {
		if got := Normalize(string(stage)); got != stage {
			t.Errorf("Normalize(%q) = %q, want %q", stage, got, stage)
		}
	}
}

func TestNormalizeLegacyDecisionLabel(t *testing.T) {
	got := Normalize("Decision (Approved/Declined/More Info)")
	if got != StageMoreInfo {
		t.Errorf("legacy decision label normalized to %q, want %q", got, StageMoreInfo)
	}
}

func TestNormalizeFallsBackToFirstStage(t *testing.T) {
	cases := []string{"", "   ", "Underwriting", "lead", "LEAD", "Closed Won"}
	for _, in := range cases {
		if got := Normalize(in); got != StageLead {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, StageLead)
		}
	}
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	if got := Normalize("  Sent to Banker  "); got != StageSentToBanker {
		t.Errorf("Normalize with padding = %q, want %q", got, StageSentToBanker)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Lead", "Completed", "Decision (Approved/Declined/More Info)",
		"garbage", "", "Structuring Phase",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(string(once))
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCatalogOrder(t *testing.T) {
	catalog := Catalog()
	if len(catalog) != 10 {
		t.Fatalf("catalog has %d stages, want 10", len(catalog))
	}
	if catalog[0] != StageLead {
		t.Errorf("first stage = %q, want %q", catalog[0], StageLead)
	}
	if catalog[len(catalog)-1] != StageCompleted {
		t.Errorf("last stage = %q, want %q", catalog[len(catalog)-1], StageCompleted)
	}
	for i, stage := range catalog {
		if Index(stage) != i {
			t.Errorf("Index(%q) = %d, want %d", stage, Index(stage), i)
		}
		if !IsValid(stage) {
			t.Errorf("IsValid(%q) = false", stage)
		}
	}
}

func TestIndexUnknownStage(t *testing.T) {
	if got := Index(Stage("Underwriting")); got != -1 {
		t.Errorf("Index(unknown) = %d, want -1", got)
	}
	if IsValid(Stage("Underwriting")) {
		t.Error("IsValid(unknown) = true, want false")
	}
}
