package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"brokerdash/internal/model"
	"brokerdash/internal/pipeline"
	"brokerdash/internal/service"
)

type ClientHandler struct {
	clients     *service.ClientService
	transitions *service.TransitionService
	logger      *zap.Logger
}

func NewClientHandler(
	clients *service.ClientService,
	transitions *service.TransitionService,
	logger *zap.Logger,
) *ClientHandler {
	return &ClientHandler{
		clients:     clients,
		transitions: transitions,
		logger:      logger,
	}
}

type clientRequest struct {
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	Stage         string     `json:"stage"`
	AssignedTo    string     `json:"assigned_to"`
	BankerName    string     `json:"banker_name"`
	BankerEmail   string     `json:"banker_email"`
	Lender        string     `json:"lender"`
	Notes         string     `json:"notes"`
	NotesFileLink string     `json:"notes_file_link"`
	ClosingDate   *time.Time `json:"closing_date"`
}

func (r clientRequest) toModel() *model.Client {
	return &model.Client{
		Name:          r.Name,
		Phone:         r.Phone,
		Email:         r.Email,
		Stage:         pipeline.Stage(r.Stage),
		AssignedTo:    r.AssignedTo,
		BankerName:    r.BankerName,
		BankerEmail:   r.BankerEmail,
		Lender:        r.Lender,
		Notes:         r.Notes,
		NotesFileLink: r.NotesFileLink,
		ClosingDate:   r.ClosingDate,
	}
}

func clientID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateClient: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	client := req.toModel()
	if err := h.clients.Create(c.Request.Context(), client); err != nil {
		writeError(c, err)
		return
	}

	h.logger.Info("CreateClient: success",
		zap.String("client_id", client.ID.String()),
		zap.String("stage", string(client.Stage)),
	)
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

func (h *ClientHandler) ListClients(c *gin.Context) {
	includeArchived := c.Query("archived") == "true"

	clients, err := h.clients.List(c.Request.Context(), includeArchived)
	if err != nil {
		h.logger.Error("ListClients: failed to fetch clients", zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}

	client, err := h.clients.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("UpdateClient: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	client := req.toModel()
	client.ID = id
	if err := h.clients.Update(c.Request.Context(), client); err != nil {
		writeError(c, err)
		return
	}

	updated, err := h.clients.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	h.logger.Info("UpdateClient: success", zap.String("client_id", id.String()))
	c.JSON(http.StatusOK, gin.H{"client": updated})
}

type moveStageRequest struct {
	Stage string `json:"stage"`
}

// MoveStage runs the guarded transition. The response carries the committed
// row so the board can reconcile without a refetch.
func (h *ClientHandler) MoveStage(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}

	var req moveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("MoveStage: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	client, err := h.transitions.MoveStage(c.Request.Context(), id, pipeline.Stage(req.Stage), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (h *ClientHandler) ArchiveClient(c *gin.Context) {
	h.setArchived(c, true)
}

func (h *ClientHandler) UnarchiveClient(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *ClientHandler) setArchived(c *gin.Context, archived bool) {
	id, ok := clientID(c)
	if !ok {
		return
	}

	if err := h.clients.SetArchived(c.Request.Context(), id, archived); err != nil {
		writeError(c, err)
		return
	}

	h.logger.Info("SetArchived: success",
		zap.String("client_id", id.String()),
		zap.Bool("archived", archived),
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}

	if err := h.clients.HardDelete(c.Request.Context(), id, actorFrom(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *ClientHandler) GetHistory(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}

	entries, err := h.clients.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (h *ClientHandler) GetStageDuration(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}

	duration, err := h.clients.StageDuration(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stage_duration": duration})
}
