package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"brokerdash/internal/apperr"
	"brokerdash/internal/model"
	"brokerdash/internal/repository"
)

// ContentType of the calendar feed.
const ICSContentType = "text/calendar; charset=utf-8"

type CalendarService struct {
	taskRepo   *repository.TaskRepository
	clientRepo *repository.ClientRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewCalendarService(
	taskRepo *repository.TaskRepository,
	clientRepo *repository.ClientRepository,
	logger *zap.Logger,
) *CalendarService {
	return &CalendarService{
		taskRepo:   taskRepo,
		clientRepo: clientRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// TasksFeed renders all open tasks with a due date as an ICS calendar.
func (s *CalendarService) TasksFeed(ctx context.Context) (string, error) {
	tasks, err := s.taskRepo.ListOpenWithDueDate(ctx)
	if err != nil {
		return "", apperr.Upstream(err)
	}

	clients, err := s.clientRepo.List(ctx, true)
	if err != nil {
		return "", apperr.Upstream(err)
	}
	nameByID := make(map[string]string, len(clients))
	for _, c := range clients {
		nameByID[c.ID.String()] = c.Name
	}

	return BuildICS(tasks, nameByID, s.now()), nil
}

// BuildICS renders open tasks as all-day VEVENTs. Each UID derives from
// the task id, so calendar apps update entries on refetch instead of
// duplicating them. Pure; exported for tests.
func BuildICS(tasks []model.Task, clientNameByID map[string]string, now time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Brokerdash//Tasks//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}

	dtstamp := now.UTC().Format("20060102T150405Z")

	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due := *t.DueDate

		summary := t.Title
		if t.ClientID != nil {
			if name := clientNameByID[t.ClientID.String()]; name != "" {
				summary = fmt.Sprintf("%s - %s", t.Title, name)
			}
		}

		lines = append(lines, "BEGIN:VEVENT")
		// All-day events: DTEND is the following day per RFC 5545.
		lines = append(lines, fmt.Sprintf("DTSTART;VALUE=DATE:%s", due.Format("20060102")))
		lines = append(lines, fmt.Sprintf("DTEND;VALUE=DATE:%s", due.AddDate(0, 0, 1).Format("20060102")))
		lines = append(lines, fmt.Sprintf("DTSTAMP:%s", dtstamp))
		lines = append(lines, fmt.Sprintf("UID:%s@brokerdash", t.ID))
		lines = append(lines, fmt.Sprintf("SUMMARY:%s", escapeICSText(summary)))
		if t.Notes != "" {
			lines = append(lines, fmt.Sprintf("DESCRIPTION:%s", escapeICSText(t.Notes)))
		}
		lines = append(lines, "END:VEVENT")
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n")
}

func escapeICSText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, ";", `\;`)
	return s
}
