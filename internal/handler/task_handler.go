package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"brokerdash/internal/model"
	"brokerdash/internal/service"
)

type TaskHandler struct {
	tasks  *service.TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

type taskRequest struct {
	ClientID      *uuid.UUID `json:"client_id"`
	Title         string     `json:"title"`
	AssignedTo    string     `json:"assigned_to"`
	AssigneeEmail string     `json:"assignee_email"`
	DueDate       *time.Time `json:"due_date"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes"`
}

func (r taskRequest) toModel() *model.Task {
	return &model.Task{
		ClientID:      r.ClientID,
		Title:         r.Title,
		AssignedTo:    r.AssignedTo,
		AssigneeEmail: r.AssigneeEmail,
		DueDate:       r.DueDate,
		Status:        r.Status,
		Notes:         r.Notes,
	}
}

func taskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateTask: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task := req.toModel()
	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		writeError(c, err)
		return
	}

	h.logger.Info("CreateTask: success",
		zap.String("task_id", task.ID.String()),
		zap.String("title", task.Title),
	)
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	filter := c.DefaultQuery("filter", service.TaskFilterOpen)

	tasks, err := h.tasks.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("UpdateTask: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task := req.toModel()
	task.ID = id
	if err := h.tasks.Update(c.Request.Context(), task); err != nil {
		writeError(c, err)
		return
	}

	updated, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": updated})
}

func (h *TaskHandler) CompleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.tasks.Complete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	h.logger.Info("CompleteTask: success", zap.String("task_id", id.String()))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
