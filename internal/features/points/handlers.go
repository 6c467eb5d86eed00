// Package points: handlers.go exposes crediting, the caller's total and
// history, and ledger inspection.
package points

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bahth.org/engagement/internal/access"
	"bahth.org/engagement/internal/common"
	"bahth.org/engagement/internal/server/middleware"
	"bahth.org/engagement/internal/server/respond"
)

// creditFailure is shown when a credit did not commit.
const creditFailure = "تعذر تسجيل النقاط"

// Handler serves /points.
type Handler struct {
	service *Service
}

// NewHandler creates the points handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the points routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/points")
	g.GET("/actions", h.HandleActions)
	g.POST("/credit", middleware.Require(access.CapCreditPoints), h.HandleCredit)
	g.GET("/me", middleware.Require(access.CapViewOwn), h.HandleMyTotal)
	g.GET("/me/history", middleware.Require(access.CapViewOwn), h.HandleMyHistory)
	g.GET("/ledgers/:userId", middleware.Require(access.CapInspectLedgers), h.HandleLedger)
}

// HandleActions: GET /points/actions
func (h *Handler) HandleActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actions": Actions()})
}

// HandleCredit: POST /points/credit
func (h *Handler) HandleCredit(c *gin.Context) {
	var req CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "الطلب غير صالح: userId و action مطلوبان")
		return
	}

	result, err := h.service.Credit(c.Request.Context(), req)
	if err != nil {
		respond.Error(c, err, creditFailure)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// HandleMyTotal: GET /points/me
func (h *Handler) HandleMyTotal(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	total, err := h.service.GetTotal(c.Request.Context(), p.UserID)
	if err != nil {
		respond.Error(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":      p.UserID,
		"totalPoints": total,
		"display":     common.FormatPointsLocalized(total),
	})
}

// HandleMyHistory: GET /points/me/history?limit=
func (h *Handler) HandleMyHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.BadRequest(c, "قيمة limit غير صالحة")
			return
		}
		limit = n
	}

	p := middleware.PrincipalFrom(c)
	events, err := h.service.GetHistory(c.Request.Context(), p.UserID, limit)
	if err != nil {
		respond.Error(c, err, "")
		return
	}
	if events == nil {
		events = []*Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// HandleLedger: GET /points/ledgers/:userId
func (h *Handler) HandleLedger(c *gin.Context) {
	ledger, err := h.service.GetLedger(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respond.Error(c, err, "")
		return
	}
	c.JSON(http.StatusOK, ledger)
}
