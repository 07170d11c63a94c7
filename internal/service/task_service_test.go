package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"brokerdash/internal/model"
)

func taskDue(due time.Time, status string) model.Task {
	return model.Task{
		ID:      uuid.New(),
		Title:   "t",
		Status:  status,
		DueDate: &due,
	}
}

func taskNoDue(status string) model.Task {
	return model.Task{ID: uuid.New(), Title: "t", Status: status}
}

func TestFilterTasks(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	todayMorning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	nextWeek := time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)

	overdue := taskDue(yesterday, model.TaskStatusOpen)
	dueToday := taskDue(todayMorning, model.TaskStatusOpen)
	upcoming := taskDue(nextWeek, model.TaskStatusOpen)
	noDue := taskNoDue(model.TaskStatusOpen)
	done := taskDue(yesterday, model.TaskStatusDone)

	all := []model.Task{overdue, dueToday, upcoming, noDue, done}

	cases := []struct {
		filter string
		want   []uuid.UUID
	}{
		{TaskFilterAll, []uuid.UUID{overdue.ID, dueToday.ID, upcoming.ID, noDue.ID, done.ID}},
		{TaskFilterOpen, []uuid.UUID{overdue.ID, dueToday.ID, upcoming.ID, noDue.ID}},
		{TaskFilterOverdue, []uuid.UUID{overdue.ID}},
		{TaskFilterToday, []uuid.UUID{dueToday.ID}},
		{TaskFilterUpcoming, []uuid.UUID{upcoming.ID}},
		{TaskFilterCompleted, []uuid.UUID{done.ID}},
	}

	for _, tc := range cases {
		t.Run(tc.filter, func(t *testing.T) {
			got := FilterTasks(all, tc.filter, now)
			if len(got) != len(tc.want) {
				t.Fatalf("filter %q: got %d tasks, want %d", tc.filter, len(got), len(tc.want))
			}
			for i, task := range got {
				if task.ID != tc.want[i] {
					t.Errorf("filter %q: task %d = %s, want %s", tc.filter, i, task.ID, tc.want[i])
				}
			}
		})
	}
}

func TestFilterTasksDefaultsToOpen(t *testing.T) {
	done := taskNoDue(model.TaskStatusDone)
	open := taskNoDue(model.TaskStatusOpen)

	got := FilterTasks([]model.Task{done, open}, "", time.Now())
	if len(got) != 1 || got[0].ID != open.ID {
		t.Fatalf("empty filter should return open tasks only, got %d", len(got))
	}
}

func TestFilterTasksCompletedIgnoresDueDate(t *testing.T) {
	// A completed task is never overdue regardless of its due date.
	past := time.Now().AddDate(0, 0, -30)
	done := taskDue(past, model.TaskStatusDone)

	got := FilterTasks([]model.Task{done}, TaskFilterOverdue, time.Now())
	if len(got) != 0 {
		t.Fatalf("completed task should not appear in overdue, got %d", len(got))
	}
}
