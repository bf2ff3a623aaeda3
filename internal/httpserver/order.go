package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	ordersvc "github.com/meloogk/O-Maillot-Backend/internal/service/order"
)

func (h *handlers) checkout(c *gin.Context) {
	var req ordersvc.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "corps de requête invalide")
		return
	}
	o, err := h.deps.Orders.Checkout(c.Request.Context(), principal(c).UserID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *handlers) listMyOrders(c *gin.Context) {
	orders, err := h.deps.Orders.ListMine(c.Request.Context(), principal(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handlers) listAllOrders(c *gin.Context) {
	orders, err := h.deps.Orders.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handlers) getOrder(c *gin.Context) {
	p := principal(c)
	o, err := h.deps.Orders.Get(c.Request.Context(), p.UserID, isAdmin(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type statusRequest struct {
	Status domain.OrderStatus `json:"statutCommande" binding:"required"`
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "statut requis")
		return
	}
	o, err := h.deps.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type deliveryRequest struct {
	ExpectedDelivery time.Time `json:"dateLivraisonPrevue" binding:"required"`
}

func (h *handlers) setOrderDelivery(c *gin.Context) {
	var req deliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "date de livraison requise")
		return
	}
	o, err := h.deps.Orders.SetExpectedDelivery(c.Request.Context(), c.Param("id"), req.ExpectedDelivery)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// cancelOrder lets the owner or an admin void a pending order.
func (h *handlers) cancelOrder(c *gin.Context) {
	p := principal(c)
	if _, err := h.deps.Orders.Get(c.Request.Context(), p.UserID, isAdmin(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	o, err := h.deps.Orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
