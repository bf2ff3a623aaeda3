package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	usersvc "github.com/meloogk/O-Maillot-Backend/internal/service/user"
)

func (h *handlers) signup(c *gin.Context) {
	var req usersvc.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "corps de requête invalide")
		return
	}
	res, err := h.deps.Users.Signup(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"motDePasse" binding:"required"`
}

// login authenticates and, when the request carries an anonymous session id,
// folds that session's cart into the user's cart.
func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email et mot de passe requis")
		return
	}
	res, err := h.deps.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if sid := c.GetHeader(sessionHeader); sid != "" {
		if _, err := h.deps.Carts.MergeSession(c.Request.Context(), res.User.ID, sid); err != nil {
			h.logger.Printf("cart merge for user %s failed: %v", res.User.ID, err)
		}
	}

	c.JSON(http.StatusOK, res)
}

func (h *handlers) me(c *gin.Context) {
	u, err := h.deps.Users.Profile(c.Request.Context(), principal(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
