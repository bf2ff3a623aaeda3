package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	paymentsvc "github.com/meloogk/O-Maillot-Backend/internal/service/payment"
)

func (h *handlers) createPayment(c *gin.Context) {
	var req paymentsvc.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "corps de requête invalide")
		return
	}
	p, err := h.deps.Payments.Create(c.Request.Context(), principal(c).UserID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) listMyPayments(c *gin.Context) {
	payments, err := h.deps.Payments.ListMine(c.Request.Context(), principal(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}

func (h *handlers) listAllPayments(c *gin.Context) {
	payments, err := h.deps.Payments.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}

func (h *handlers) getPayment(c *gin.Context) {
	p, err := h.deps.Payments.Get(c.Request.Context(), principal(c).UserID, isAdmin(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) getOrderPayment(c *gin.Context) {
	p, err := h.deps.Payments.GetByOrder(c.Request.Context(), principal(c).UserID, isAdmin(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listMyHistory(c *gin.Context) {
	entries, err := h.deps.Payments.ListHistory(c.Request.Context(), principal(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if entries == nil {
		entries = []domain.PaymentHistory{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *handlers) listAllHistory(c *gin.Context) {
	entries, err := h.deps.Payments.ListAllHistory(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if entries == nil {
		entries = []domain.PaymentHistory{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *handlers) deleteHistory(c *gin.Context) {
	if err := h.deps.Payments.DeleteHistory(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) createInvoice(c *gin.Context) {
	inv, err := h.deps.Invoices.Create(c.Request.Context(), principal(c).UserID, isAdmin(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *handlers) getInvoiceByPayment(c *gin.Context) {
	inv, err := h.deps.Invoices.GetByPayment(c.Request.Context(), principal(c).UserID, isAdmin(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *handlers) getInvoice(c *gin.Context) {
	inv, err := h.deps.Invoices.Get(c.Request.Context(), principal(c).UserID, isAdmin(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *handlers) listInvoices(c *gin.Context) {
	invoices, err := h.deps.Invoices.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	c.JSON(http.StatusOK, invoices)
}
