// Package achievements: handlers.go exposes the catalog and a caller's unlocks.
package achievements

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bahth.org/engagement/internal/access"
	"bahth.org/engagement/internal/server/middleware"
	"bahth.org/engagement/internal/server/respond"
)

// Handler serves /achievements.
type Handler struct {
	service *Service
}

// NewHandler creates the achievements handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the achievements routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/achievements")
	g.GET("", h.HandleCatalog)
	g.GET("/me", middleware.Require(access.CapViewOwn), h.HandleMine)
}

// HandleCatalog: GET /achievements
func (h *Handler) HandleCatalog(c *gin.Context) {
	catalog, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		respond.Error(c, err, "تعذر تحميل قائمة الإنجازات")
		return
	}
	if catalog == nil {
		catalog = []Achievement{}
	}
	c.JSON(http.StatusOK, gin.H{"achievements": catalog})
}

// HandleMine: GET /achievements/me
func (h *Handler) HandleMine(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	list, err := h.service.UserAchievements(c.Request.Context(), p.UserID)
	if err != nil {
		respond.Error(c, err, "تعذر تحميل إنجازاتك")
		return
	}
	if list == nil {
		list = []UserAchievement{}
	}
	c.JSON(http.StatusOK, gin.H{"achievements": list, "count": len(list)})
}
