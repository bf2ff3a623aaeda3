package httpserver

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/meloogk/O-Maillot-Backend/internal/auth"
	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	cartsvc "github.com/meloogk/O-Maillot-Backend/internal/service/cart"
)

// sessionHeader carries the anonymous cart session id.
const sessionHeader = "X-Session-Id"

const principalKey = "principal"

type handlers struct {
	deps   Deps
	logger *log.Logger
}

// requireAuth rejects requests without a valid bearer token.
func (h *handlers) requireAuth(c *gin.Context) {
	p, ok := h.bearerPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentification requise"})
		return
	}
	c.Set(principalKey, p)
	c.Next()
}

// optionalAuth attaches a principal when a valid token is present but lets
// anonymous requests through; cart routes fall back to the session header.
func (h *handlers) optionalAuth(c *gin.Context) {
	if p, ok := h.bearerPrincipal(c); ok {
		c.Set(principalKey, p)
	}
	c.Next()
}

func (h *handlers) requireAdmin(c *gin.Context) {
	p := principal(c)
	if p.Role != domain.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "réservé aux administrateurs"})
		return
	}
	c.Next()
}

func (h *handlers) bearerPrincipal(c *gin.Context) (auth.Principal, bool) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return auth.Principal{}, false
	}
	p, err := h.deps.Tokens.Verify(token)
	if err != nil {
		return auth.Principal{}, false
	}
	return p, true
}

func principal(c *gin.Context) auth.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(auth.Principal)
	return p
}

func isAdmin(c *gin.Context) bool {
	return principal(c).Role == domain.RoleAdmin
}

// cartOwner resolves who a cart request acts for: the authenticated user
// when a token is present, the session header otherwise.
func cartOwner(c *gin.Context) (cartsvc.Owner, bool) {
	if p := principal(c); p.UserID != "" {
		return cartsvc.Owner{UserID: p.UserID}, true
	}
	if sid := c.GetHeader(sessionHeader); sid != "" {
		return cartsvc.Owner{SessionID: sid}, true
	}
	return cartsvc.Owner{}, false
}
