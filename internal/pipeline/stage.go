package pipeline

import "strings"

// Stage is one named step in the client pipeline.
type Stage string

// Stages in board presentation order. Order is for display only; clients
// may jump stages.
const (
	StageLead            Stage = "Lead"
	StageChecklistSent   Stage = "Checklist Sent"
	StageDocsReceived    Stage = "Docs Received"
	StageStructuring     Stage = "Structuring Phase"
	StageReadyForBanker  Stage = "Ready to Send to Banker"
	StageSentToBanker    Stage = "Sent to Banker"
	StageMoreInfo        Stage = "More Info"
	StageApproved        Stage = "Approved"
	StageDeclined        Stage = "Declined"
	StageCompleted       Stage = "Completed"
)

// Catalog returns the ordered stage catalog.
func Catalog() []Stage {
	return []Stage{
		StageLead,
		StageChecklistSent,
		StageDocsReceived,
		StageStructuring,
		StageReadyForBanker,
		StageSentToBanker,
		StageMoreInfo,
		StageApproved,
		StageDeclined,
		StageCompleted,
	}
}

// Retired combined label, split into Approved/Declined/More Info. Records
// written before the split may still carry it.
const legacyDecisionStage = "Decision (Approved/Declined/More Info)"

// Normalize maps any stored stage string onto the current catalog.
// Legacy labels get their canonical replacement; empty or unrecognized
// values fall back to the catalog's first stage. Idempotent.
func Normalize(s string) Stage {
	trimmed := strings.TrimSpace(s)
	if trimmed == legacyDecisionStage {
		return StageMoreInfo
	}
	for _, stage := range Catalog() {
		if trimmed == string(stage) {
			return stage
		}
	}
	return StageLead
}

// IsValid reports whether s is a current catalog stage.
func IsValid(s Stage) bool {
	for _, stage := range Catalog() {
		if s == stage {
			return true
		}
	}
	return false
}

// Index returns the presentation position of a stage, or -1.
func Index(s Stage) int {
	for i, stage := range Catalog() {
		if s == stage {
			return i
		}
	}
	return -1
}
