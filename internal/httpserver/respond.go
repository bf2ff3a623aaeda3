package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	"github.com/meloogk/O-Maillot-Backend/internal/loyalty"
	cartsvc "github.com/meloogk/O-Maillot-Backend/internal/service/cart"
	ordersvc "github.com/meloogk/O-Maillot-Backend/internal/service/order"
	paymentsvc "github.com/meloogk/O-Maillot-Backend/internal/service/payment"
	productsvc "github.com/meloogk/O-Maillot-Backend/internal/service/product"
	referralsvc "github.com/meloogk/O-Maillot-Backend/internal/service/referral"
	usersvc "github.com/meloogk/O-Maillot-Backend/internal/service/user"
)

// respondError maps service errors onto HTTP statuses. Unrecognised errors
// are logged and answered with a bare 500.
func (h *handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, referralsvc.ErrAlreadyRedeemed),
		errors.Is(err, referralsvc.ErrDuplicateReferral):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInactiveAccount):
		status = http.StatusForbidden
	case errors.Is(err, usersvc.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, usersvc.ErrInvalidInput),
		errors.Is(err, productsvc.ErrInvalidProduct),
		errors.Is(err, cartsvc.ErrInvalidQuantity),
		errors.Is(err, cartsvc.ErrInvalidSize),
		errors.Is(err, cartsvc.ErrOwnerRequired),
		errors.Is(err, ordersvc.ErrEmptyCart),
		errors.Is(err, ordersvc.ErrIncompleteAddress),
		errors.Is(err, ordersvc.ErrInvalidDeliveryDate),
		errors.Is(err, ordersvc.ErrInvalidLineItem),
		errors.Is(err, ordersvc.ErrInvalidTransition),
		errors.Is(err, ordersvc.ErrNotCancellable),
		errors.Is(err, paymentsvc.ErrInvalidMethod),
		errors.Is(err, paymentsvc.ErrOrderNotPending),
		errors.Is(err, referralsvc.ErrCodeRequired),
		errors.Is(err, referralsvc.ErrSelfReferral),
		errors.Is(err, loyalty.ErrUnsupportedCurrency),
		errors.Is(err, loyalty.ErrNegativeAmount):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Printf("internal error: %v", err)
		c.JSON(status, gin.H{"error": "erreur interne"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
