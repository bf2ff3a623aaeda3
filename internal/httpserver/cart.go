package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meloogk/O-Maillot-Backend/internal/domain"
)

func (h *handlers) getCart(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		badRequest(c, "session ou authentification requise")
		return
	}
	cart, err := h.deps.Carts.Get(c.Request.Context(), owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type addItemRequest struct {
	ProductID string      `json:"produit" binding:"required"`
	Size      domain.Size `json:"taille" binding:"required"`
	Quantity  int         `json:"quantite" binding:"required"`
}

func (h *handlers) addCartItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		badRequest(c, "session ou authentification requise")
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "corps de requête invalide")
		return
	}
	cart, err := h.deps.Carts.AddItem(c.Request.Context(), owner, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type updateItemRequest struct {
	Quantity *int `json:"quantite" binding:"required"`
}

func (h *handlers) updateCartItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		badRequest(c, "session ou authentification requise")
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantité requise")
		return
	}
	cart, err := h.deps.Carts.UpdateItem(c.Request.Context(), owner, c.Param("itemID"), *req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		badRequest(c, "session ou authentification requise")
		return
	}
	cart, err := h.deps.Carts.RemoveItem(c.Request.Context(), owner, c.Param("itemID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// mergeCart folds the anonymous session cart named by the session header
// into the authenticated user's cart.
func (h *handlers) mergeCart(c *gin.Context) {
	sid := c.GetHeader(sessionHeader)
	if sid == "" {
		badRequest(c, "en-tête de session requis")
		return
	}
	cart, err := h.deps.Carts.MergeSession(c.Request.Context(), principal(c).UserID, sid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) clearCart(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		badRequest(c, "session ou authentification requise")
		return
	}
	if err := h.deps.Carts.Clear(c.Request.Context(), owner); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
