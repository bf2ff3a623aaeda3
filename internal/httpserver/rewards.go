package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meloogk/O-Maillot-Backend/internal/domain"
)

type redeemRequest struct {
	Code string `json:"codeParrainage"`
}

func (h *handlers) redeemReferral(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "corps de requête invalide")
		return
	}
	res, err := h.deps.Referral.Redeem(c.Request.Context(), principal(c).UserID, req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) rewardsSummary(c *gin.Context) {
	currency := domain.Currency(c.Query("devise"))
	sum, err := h.deps.Rewards.Summary(c.Request.Context(), principal(c).UserID, currency)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *handlers) listTiers(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Rewards.Tiers())
}
