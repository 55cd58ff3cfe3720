package importexport

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/auth"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/models"
)

// Handler handles import/export requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new import/export handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// Bookmark represents a link in the import/export JSON format
type Bookmark struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Favicon string   `json:"favicon,omitempty"`
	Summary string   `json:"summary,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Time    string   `json:"time,omitempty"`
}

// ImportRequest represents an import request
type ImportRequest struct {
	Bookmarks []Bookmark `json:"bookmarks" binding:"required"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Export returns all of the user's links as bookmarks in display order
// @Summary Export bookmarks
// @Description Export the authenticated user's links as JSON
// @Tags importexport
// @Produce json
// @Success 200 {array} Bookmark
// @Security BearerAuth
// @Router /export [get]
func (h *Handler) Export(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var links []models.Link
	if err := h.db.Where("user_id = ?", userID).Order("position ASC").Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch links"})
		return
	}

	bookmarks := make([]Bookmark, len(links))
	for i, link := range links {
		bookmarks[i] = Bookmark{
			URL:     link.URL,
			Title:   link.Title,
			Favicon: link.Favicon,
			Summary: link.Summary,
			Tags:    link.Tags,
			Time:    link.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, bookmarks)
}

// Import appends bookmarks at the end of the user's ordering. Duplicate
// URLs are skipped; malformed entries are reported without aborting the
// rest of the batch. No metadata fetching happens here, imports carry
// their own titles.
// @Summary Import bookmarks
// @Description Import bookmarks, appended at the end of the display order
// @Tags importexport
// @Accept json
// @Produce json
// @Param request body ImportRequest true "Bookmarks to import"
// @Success 200 {object} ImportResult
// @Failure 400 {object} map[string]string "Malformed body"
// @Security BearerAuth
// @Router /import [post]
func (h *Handler) Import(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := ImportResult{}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		next := 0
		var last models.Link
		if err := tx.Where("user_id = ?", userID).Order("position DESC").First(&last).Error; err == nil {
			next = last.Position + 1
		}

		for _, bookmark := range req.Bookmarks {
			parsed, err := url.Parse(bookmark.URL)
			if err != nil || !parsed.IsAbs() || parsed.Host == "" {
				result.Errors = append(result.Errors, "invalid url: "+bookmark.URL)
				continue
			}

			var existing models.Link
			if err := tx.Where("user_id = ? AND url = ?", userID, bookmark.URL).First(&existing).Error; err == nil {
				result.Skipped++
				continue
			}

			title := bookmark.Title
			if title == "" {
				title = bookmark.URL
			}
			tags := bookmark.Tags
			if tags == nil {
				tags = []string{}
			}

			link := models.Link{
				UserID:   userID,
				URL:      bookmark.URL,
				Title:    title,
				Favicon:  bookmark.Favicon,
				Summary:  bookmark.Summary,
				Tags:     tags,
				Position: next,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
			next++
			result.Imported++
		}

		return nil
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import bookmarks"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers import/export routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export", h.Export)
	rg.POST("/import", h.Import)
}
