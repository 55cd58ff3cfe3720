package tags

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/auth"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/models"
)

// Handler handles tag-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new tags handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	Name      string `json:"name"`
	LinkCount int    `json:"link_count"`
}

// List returns the distinct tags across the user's links with link
// counts, most-used first. Tags live as a JSON column on each link, so
// the aggregation happens here rather than in SQL.
// @Summary List tags
// @Description Get the authenticated user's tags with link counts
// @Tags tags
// @Produce json
// @Success 200 {array} TagResponse
// @Security BearerAuth
// @Router /tags [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var links []models.Link
	if err := h.db.Where("user_id = ?", userID).Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}

	counts := make(map[string]int)
	for _, link := range links {
		for _, tag := range link.Tags {
			counts[tag]++
		}
	}

	tags := make([]TagResponse, 0, len(counts))
	for name, count := range counts {
		tags = append(tags, TagResponse{Name: name, LinkCount: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].LinkCount != tags[j].LinkCount {
			return tags[i].LinkCount > tags[j].LinkCount
		}
		return tags[i].Name < tags[j].Name
	})

	c.JSON(http.StatusOK, tags)
}

// RegisterRoutes registers tag routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags", h.List)
}
