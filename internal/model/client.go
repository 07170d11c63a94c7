package model

import (
	"time"

	"github.com/google/uuid"

	"brokerdash/internal/pipeline"
)

// Client is one mortgage file moving through the pipeline.
type Client struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Phone         string         `json:"phone,omitempty"`
	Email         string         `json:"email,omitempty"`
	Stage         pipeline.Stage `json:"stage"`
	// StoredStage is the raw stage value as it sits in the database,
	// before normalization. Legacy rows hold retired labels; the
	// optimistic-concurrency precondition must compare against what the
	// column actually contains, not the normalized view.
	StoredStage string `json:"-"`
	AssignedTo    string         `json:"assigned_to,omitempty"`
	BankerName    string         `json:"banker_name,omitempty"`
	BankerEmail   string         `json:"banker_email,omitempty"`
	Lender        string         `json:"lender,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	NotesFileLink string         `json:"notes_file_link,omitempty"`
	ClosingDate   *time.Time     `json:"closing_date,omitempty"`
	IsArchived    bool           `json:"is_archived"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// StageHistoryEntry is one immutable record of a stage transition.
// FromStage is nil only for a client's first-ever entry.
type StageHistoryEntry struct {
	ID        int64           `json:"id"`
	ClientID  uuid.UUID       `json:"client_id"`
	FromStage *pipeline.Stage `json:"from_stage"`
	ToStage   pipeline.Stage  `json:"to_stage"`
	ChangedAt time.Time       `json:"changed_at"`
}

// PipelineEntry converts a history row into the pure-computation view.
func (e StageHistoryEntry) PipelineEntry() pipeline.HistoryEntry {
	return pipeline.HistoryEntry{
		ClientID:  e.ClientID.String(),
		FromStage: e.FromStage,
		ToStage:   e.ToStage,
		ChangedAt: e.ChangedAt,
	}
}

// PipelineEntries converts a history slice for the aggregator.
func PipelineEntries(entries []StageHistoryEntry) []pipeline.HistoryEntry {
	out := make([]pipeline.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.PipelineEntry())
	}
	return out
}
