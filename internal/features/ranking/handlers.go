// Package ranking: handlers.go exposes the leaderboard, standings and the
// researcher ranking.
package ranking

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bahth.org/engagement/internal/access"
	"bahth.org/engagement/internal/server/middleware"
	"bahth.org/engagement/internal/server/respond"
)

// Handler serves the ranking routes.
type Handler struct {
	service *Service
}

// NewHandler creates the ranking handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the ranking routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/points/top", h.HandleTop)
	rg.GET("/points/me/standing", middleware.Require(access.CapViewOwn), h.HandleMyStanding)

	g := rg.Group("/researchers")
	g.GET("/ranking", h.HandleRanking)
	g.GET("/:userId", h.HandleProfile)
	g.POST("/:userId/recompute", middleware.Require(access.CapRecomputeScores), h.HandleRecompute)
}

// rankingQuery binds ?sortBy=&page=&limit=.
type rankingQuery struct {
	SortBy string `form:"sortBy"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// HandleTop: GET /points/top?limit=
func (h *Handler) HandleTop(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	entries, err := h.service.GetTopByPoints(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// HandleMyStanding: GET /points/me/standing
func (h *Handler) HandleMyStanding(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	st, err := h.service.GetUserStanding(c.Request.Context(), p.UserID)
	if err != nil {
		respond.Error(c, err, "")
		return
	}
	c.JSON(http.StatusOK, st)
}

// HandleRanking: GET /researchers/ranking?sortBy=&page=&limit=
func (h *Handler) HandleRanking(c *gin.Context) {
	var q rankingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.BadRequest(c, "معاملات الاستعلام غير صالحة")
		return
	}
	page, err := h.service.GetRanking(c.Request.Context(), q.SortBy, q.Page, q.Limit)
	if err != nil {
		respond.Error(c, err, "")
		return
	}
	c.JSON(http.StatusOK, page)
}

// HandleProfile: GET /researchers/:userId
func (h *Handler) HandleProfile(c *gin.Context) {
	p, err := h.service.GetResearcherProfile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respond.Error(c, err, "")
		return
	}
	c.JSON(http.StatusOK, p)
}

// HandleRecompute: POST /researchers/:userId/recompute
func (h *Handler) HandleRecompute(c *gin.Context) {
	p, err := h.service.RecomputeResearcherScore(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respond.Error(c, err, "تعذر تحديث ملف الباحث")
		return
	}
	c.JSON(http.StatusOK, p)
}

// intQuery reads an optional integer query parameter. On a malformed
// value it answers 400 and reports false.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respond.BadRequest(c, "قيمة "+name+" غير صالحة")
		return 0, false
	}
	return n, true
}
