package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yapa-dev/techwatch/internal/notion"
	"github.com/yapa-dev/techwatch/internal/record"
	"github.com/yapa-dev/techwatch/internal/util"
	"github.com/yapa-dev/techwatch/internal/workflow"
)

// Directory is the read-only database surface the listing endpoints use.
type Directory interface {
	Search(ctx context.Context) ([]notion.Database, error)
	Query(ctx context.Context, databaseID, statusFilter string) ([]notion.Page, error)
}

// Runner executes one enrichment pass.
type Runner interface {
	Run(ctx context.Context, databaseID, recipientEmail string) (workflow.Result, error)
}

type Handler struct {
	directory Directory
	runner    Runner
	logger    *zap.Logger
}

func NewHandler(directory Directory, runner Runner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		directory: directory,
		runner:    runner,
		logger:    logger,
	}
}

type databaseEntry struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// ListDatabases handles GET /api/databases.
func (h *Handler) ListDatabases(c *gin.Context) {
	dbs, err := h.directory.Search(c.Request.Context())
	if err != nil {
		h.logger.Error("database listing failed", zap.String("error", util.RedactSecrets(err.Error())))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error while fetching databases",
			"error":   util.RedactSecrets(err.Error()),
		})
		return
	}

	out := make([]databaseEntry, 0, len(dbs))
	for _, db := range dbs {
		out = append(out, databaseEntry{
			Name: record.DatabaseName(db, "Untitled"),
			ID:   db.ID,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"databases": out,
	})
}

// GetDatabase handles GET /api/databases/:id. It returns the full-field
// flattened view of every record, no status filter applied.
func (h *Handler) GetDatabase(c *gin.Context) {
	databaseID := c.Param("id")

	pages, err := h.directory.Query(c.Request.Context(), databaseID, "")
	if err != nil {
		h.logger.Error("database query failed", zap.String("error", util.RedactSecrets(err.Error())))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error while fetching data",
			"error":   util.RedactSecrets(err.Error()),
		})
		return
	}

	results := make([]record.CompetitorRecord, 0, len(pages))
	for _, p := range pages {
		results = append(results, record.Map(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
	})
}

type enrichRequest struct {
	RecipientEmail string `json:"recipientEmail"`
}

// Enrich handles POST /api/gemini-techno/:notionDatabaseId. Missing inputs
// are rejected before any remote call is made.
func (h *Handler) Enrich(c *gin.Context) {
	databaseID := c.Param("notionDatabaseId")

	var req enrichRequest
	// A missing or empty body is handled the same as a body without the
	// field; binding errors other than EOF still surface as 400 below.
	_ = c.ShouldBindJSON(&req)

	if databaseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "The Notion database id is required.",
		})
		return
	}
	if req.RecipientEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "The recipient email is required.",
		})
		return
	}

	res, err := h.runner.Run(c.Request.Context(), databaseID, req.RecipientEmail)
	if err != nil {
		var invalid *workflow.ErrInvalidInput
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": invalid.Error(),
			})
			return
		}
		h.logger.Error("enrichment run failed", zap.String("error", util.RedactSecrets(err.Error())))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error while fetching data or processing.",
			"error":   util.RedactSecrets(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, res)
}
