package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	mqcontracts "brokerdash/contracts/mq"
	"brokerdash/pkg/logger"
	"brokerdash/pkg/metrics"
)

// NotificationService composes and sends the task-created email.
type NotificationService struct {
	email  *EmailClient
	logger *zap.Logger
}

func NewNotificationService(email *EmailClient, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		email:  email,
		logger: logger,
	}
}

// SendTaskCreated sends the notification for one task.created event.
// Missing configuration or a missing recipient skips the send silently.
func (s *NotificationService) SendTaskCreated(ctx context.Context, p mqcontracts.TaskCreatedPayload) error {
	log := logger.WithTrace(ctx, s.logger)

	if !s.email.Configured() || p.AssigneeEmail == "" {
		log.Info("Skipping task email",
			zap.String("task_id", p.TaskID),
			zap.Bool("email_configured", s.email.Configured()),
		)
		metrics.IncrementNotificationEmail("skipped")
		return nil
	}

	subject := fmt.Sprintf("New task: %s", p.Title)
	body := buildTaskCreatedBody(p)

	if err := s.email.Send(ctx, p.AssigneeEmail, subject, body); err != nil {
		log.Error("Failed to send task email",
			zap.String("task_id", p.TaskID),
			zap.String("to", p.AssigneeEmail),
			zap.Error(err),
		)
		metrics.IncrementNotificationEmail("failed")
		return err
	}

	log.Info("Task email sent",
		zap.String("task_id", p.TaskID),
		zap.String("to", p.AssigneeEmail),
	)
	metrics.IncrementNotificationEmail("sent")
	return nil
}

func buildTaskCreatedBody(p mqcontracts.TaskCreatedPayload) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<h2>%s</h2>", html.EscapeString(p.Title)))
	if p.ClientName != "" {
		b.WriteString(fmt.Sprintf("<p>Client: %s</p>", html.EscapeString(p.ClientName)))
	}
	if p.DueDate != nil {
		b.WriteString(fmt.Sprintf("<p>Due: %s</p>", p.DueDate.Format("Jan 2, 2006")))
	}
	if p.Notes != "" {
		b.WriteString(fmt.Sprintf("<p>%s</p>", html.EscapeString(p.Notes)))
	}

	return b.String()
}
