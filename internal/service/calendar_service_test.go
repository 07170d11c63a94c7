package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"brokerdash/internal/model"
)

func TestBuildICSEmptyFeed(t *testing.T) {
	ics := BuildICS(nil, nil, time.Now())

	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR") {
		t.Errorf("feed should start with BEGIN:VCALENDAR, got %q", ics[:20])
	}
	if !strings.HasSuffix(ics, "END:VCALENDAR") {
		t.Errorf("feed should end with END:VCALENDAR")
	}
	if strings.Contains(ics, "VEVENT") {
		t.Errorf("empty feed should have no events")
	}
}

func TestBuildICSAllDayEvent(t *testing.T) {
	due := time.Date(2026, 4, 15, 10, 30, 0, 0, time.UTC)
	taskID := uuid.New()
	clientID := uuid.New()
	task := model.Task{
		ID:       taskID,
		ClientID: &clientID,
		Title:    "Order appraisal",
		Status:   model.TaskStatusOpen,
		DueDate:  &due,
	}
	names := map[string]string{clientID.String(): "Jane Doe"}

	ics := BuildICS([]model.Task{task}, names, time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"DTSTART;VALUE=DATE:20260415",
		"DTEND;VALUE=DATE:20260416",
		"UID:" + taskID.String() + "@brokerdash",
		"SUMMARY:Order appraisal - Jane Doe",
		"DTSTAMP:20260401T120000Z",
	} {
		if !strings.Contains(ics, want) {
			t.Errorf("feed missing %q", want)
		}
	}
}

func TestBuildICSStableUID(t *testing.T) {
	due := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	task := model.Task{ID: uuid.New(), Title: "Follow up", Status: model.TaskStatusOpen, DueDate: &due}

	first := BuildICS([]model.Task{task}, nil, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	second := BuildICS([]model.Task{task}, nil, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))

	uid := "UID:" + task.ID.String() + "@brokerdash"
	if !strings.Contains(first, uid) || !strings.Contains(second, uid) {
		t.Fatalf("UID must be stable across renders")
	}
}

func TestBuildICSEscapesText(t *testing.T) {
	due := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	task := model.Task{
		ID:      uuid.New(),
		Title:   "Call lender; discuss rate, terms",
		Status:  model.TaskStatusOpen,
		DueDate: &due,
		Notes:   "line one\nline two",
	}

	ics := BuildICS([]model.Task{task}, nil, time.Now())

	if !strings.Contains(ics, `SUMMARY:Call lender\; discuss rate\, terms`) {
		t.Errorf("summary not escaped: %s", ics)
	}
	if !strings.Contains(ics, `DESCRIPTION:line one\nline two`) {
		t.Errorf("description newline not escaped: %s", ics)
	}
}

func TestBuildICSOmitsUnknownClient(t *testing.T) {
	due := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	clientID := uuid.New()
	task := model.Task{
		ID:       uuid.New(),
		ClientID: &clientID,
		Title:    "Send docs",
		Status:   model.TaskStatusOpen,
		DueDate:  &due,
	}

	ics := BuildICS([]model.Task{task}, map[string]string{}, time.Now())

	if !strings.Contains(ics, "SUMMARY:Send docs\r\n") {
		t.Errorf("summary should omit the client suffix when the name is unknown")
	}
}

func TestBuildICSUsesCRLF(t *testing.T) {
	ics := BuildICS(nil, nil, time.Now())
	if !strings.Contains(ics, "\r\n") {
		t.Errorf("feed lines must be CRLF separated")
	}
	if strings.Contains(strings.ReplaceAll(ics, "\r\n", ""), "\n") {
		t.Errorf("feed must not contain bare LF")
	}
}
