package links

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/auth"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/metadata"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/models"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/summary"
)

// Handler handles link-related requests
type Handler struct {
	db        *gorm.DB
	metadata  metadata.Fetcher
	summaries summary.Provider
}

// NewHandler creates a new links handler
func NewHandler(db *gorm.DB, fetcher metadata.Fetcher, summaries summary.Provider) *Handler {
	return &Handler{db: db, metadata: fetcher, summaries: summaries}
}

// CreateLinkRequest represents the request to save a link
type CreateLinkRequest struct {
	URL  string   `json:"url" binding:"required"`
	Tags []string `json:"tags"`
}

// ReorderEntry is one (id, order) assignment in a reorder request
type ReorderEntry struct {
	ID       uint `json:"id" binding:"required"`
	Position *int `json:"order" binding:"required"`
}

// ReorderRequest represents the full new ordering of the user's links
type ReorderRequest struct {
	Orders []ReorderEntry `json:"orders" binding:"required,dive"`
}

// LinkResponse represents a link in API responses
type LinkResponse struct {
	ID        uint     `json:"id"`
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Favicon   string   `json:"favicon"`
	Summary   string   `json:"summary"`
	Tags      []string `json:"tags"`
	Position  int      `json:"order"`
	CreatedAt string   `json:"created_at"`
}

func linkToResponse(link models.Link) LinkResponse {
	tags := link.Tags
	if tags == nil {
		tags = []string{}
	}
	return LinkResponse{
		ID:        link.ID,
		URL:       link.URL,
		Title:     link.Title,
		Favicon:   link.Favicon,
		Summary:   link.Summary,
		Tags:      tags,
		Position:  link.Position,
		CreatedAt: link.CreatedAt.Format(time.RFC3339),
	}
}

// errDuplicateLink marks a duplicate (url, user) pair detected inside
// the create transaction.
var errDuplicateLink = errors.New("link already saved")

// isValidURL reports whether the given string is a well-formed absolute URL
func isValidURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	return err == nil && parsed.IsAbs() && parsed.Host != ""
}

// List returns all of the user's links in display order
// @Summary List links
// @Description Get all of the authenticated user's links, ascending by order
// @Tags links
// @Produce json
// @Success 200 {array} LinkResponse
// @Security BearerAuth
// @Router /links [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var links []models.Link
	if err := h.db.Where("user_id = ?", userID).Order("position ASC").Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch links"})
		return
	}

	responses := make([]LinkResponse, len(links))
	for i, link := range links {
		responses[i] = linkToResponse(link)
	}

	c.JSON(http.StatusOK, responses)
}

// Create saves a new link, fetching metadata and a summary for it
// @Summary Save a link
// @Description Save a URL with fetched title, favicon and summary, appended at the end of the display order
// @Tags links
// @Accept json
// @Produce json
// @Param request body CreateLinkRequest true "Link details"
// @Success 201 {object} LinkResponse
// @Failure 400 {object} map[string]string "Invalid URL or duplicate"
// @Security BearerAuth
// @Router /links [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	if !isValidURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL"})
		return
	}

	// Fast-path duplicate reject before paying for the collaborator
	// calls; the authoritative check runs again inside the transaction.
	var existing models.Link
	if err := h.db.Where("user_id = ? AND url = ?", userID, req.URL).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Link already saved"})
		return
	}

	// Both collaborators are best-effort: failures degrade to fallback
	// values inside the implementations and never abort the save.
	meta := h.metadata.Fetch(c.Request.Context(), req.URL)
	summaryText := h.summaries.Generate(c.Request.Context(), req.URL, meta.Description)

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	link := models.Link{
		UserID:  userID,
		URL:     req.URL,
		Title:   meta.Title,
		Favicon: meta.Favicon,
		Summary: summaryText,
		Tags:    tags,
	}

	// Duplicate check, max-position read and insert land in one
	// transaction so two concurrent saves cannot read the same max and
	// insert duplicate positions.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var dup models.Link
		if err := tx.Where("user_id = ? AND url = ?", userID, req.URL).First(&dup).Error; err == nil {
			return errDuplicateLink
		}

		// Append at the end of the user's ordering
		link.Position = 0
		var last models.Link
		if err := tx.Where("user_id = ?", userID).Order("position DESC").First(&last).Error; err == nil {
			link.Position = last.Position + 1
		}

		return tx.Create(&link).Error
	})

	if err != nil {
		if errors.Is(err, errDuplicateLink) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Link already saved"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save link"})
		return
	}

	c.JSON(http.StatusCreated, linkToResponse(link))
}

// Delete removes a link and closes the gap it leaves in the ordering
// @Summary Delete a link
// @Description Delete an owned link; higher-ordered links shift down by one
// @Tags links
// @Produce json
// @Param id path int true "Link ID"
// @Success 200 {object} map[string]string "Link deleted"
// @Failure 404 {object} map[string]string "Link not found"
// @Security BearerAuth
// @Router /links/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	// Delete and compaction must land together, otherwise the dense
	// ordering breaks and later reorders compute wrong positions.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var link models.Link
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&link).Error; err != nil {
			return err
		}

		if err := tx.Delete(&link).Error; err != nil {
			return err
		}

		return tx.Model(&models.Link{}).
			Where("user_id = ? AND position > ?", userID, link.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})

	if err != nil {
		// Not-owned looks identical to not-found so link existence is
		// never leaked across users.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}

// Reorder applies the client-computed ordering in one transaction
// @Summary Reorder links
// @Description Apply the full new ordering after a drag-and-drop move
// @Tags links
// @Accept json
// @Produce json
// @Param request body ReorderRequest true "Complete (id, order) assignments"
// @Success 200 {object} map[string]string "Links reordered"
// @Failure 400 {object} map[string]string "Invalid orders data"
// @Security BearerAuth
// @Router /links/reorder [post]
func (h *Handler) Reorder(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid orders data"})
		return
	}

	// Every write is filtered by ownership, so entries for links the
	// caller does not own have no effect. The client is trusted to send
	// a dense permutation; all writes land in a single transaction so a
	// failure cannot leave the ordering half-applied.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, entry := range req.Orders {
			if err := tx.Model(&models.Link{}).
				Where("id = ? AND user_id = ?", entry.ID, userID).
				UpdateColumn("position", *entry.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder links"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Links reordered successfully"})
}

// RegenerateSummary re-runs the summary provider for an owned link
// @Summary Regenerate a link's summary
// @Description Generate a fresh summary for an existing link and persist it
// @Tags links
// @Produce json
// @Param id path int true "Link ID"
// @Success 200 {object} LinkResponse
// @Failure 404 {object} map[string]string "Link not found"
// @Security BearerAuth
// @Router /links/{id}/summary [post]
func (h *Handler) RegenerateSummary(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	var link models.Link
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&link).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	// The existing summary doubles as the fallback so an unavailable
	// provider cannot clobber a previously good value.
	link.Summary = h.summaries.Generate(c.Request.Context(), link.URL, link.Summary)

	if err := h.db.Save(&link).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update link"})
		return
	}

	c.JSON(http.StatusOK, linkToResponse(link))
}

// RegisterRoutes registers link routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/links", h.List)
	rg.POST("/links", h.Create)
	rg.POST("/links/reorder", h.Reorder)
	rg.DELETE("/links/:id", h.Delete)
	rg.POST("/links/:id/summary", h.RegenerateSummary)
}
