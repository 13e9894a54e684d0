package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trkart/internal/middleware"
	"trkart/internal/models"
)

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type customerView struct {
	CreatedAt      time.Time `json:"createdAt"`
	CustomerNumber string    `json:"customerNumber"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	ID             int64     `json:"customerId"`
}

type sessionView struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
}

func newCustomerView(c *models.Customer) customerView {
	return customerView{
		ID:             c.ID,
		CustomerNumber: c.CustomerNumber,
		FullName:       c.FullName,
		Email:          c.Email,
		CreatedAt:      c.CreatedAt,
	}
}

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.authService.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Customer registered successfully", newCustomerView(customer))
}

// Login handles POST /api/v1/auth/login. The session token is set as
// an HTTP-only cookie and also returned in the body for clients that
// prefer the bearer header.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	sess, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		h.respondError(c, err)
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessionCfg.CookieName, sess.Token, maxAge, "/", "", h.sessionCfg.CookieSecure, true)

	respondOK(c, http.StatusOK, "Login successful", sessionView{
		Token:     sess.Token,
		FullName:  sess.FullName,
		Email:     sess.Email,
		ExpiresAt: sess.ExpiresAt,
	})
}

// Logout handles POST /api/v1/auth/logout. The token is accepted in
// either credential form the session middleware honors, so a
// bearer-only client's session really ends. Logging out an absent or
// expired session still succeeds.
func (h *Handler) Logout(c *gin.Context) {
	token := middleware.SessionToken(c, h.sessionCfg.CookieName)

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessionCfg.CookieName, "", -1, "/", "", h.sessionCfg.CookieSecure, true)
	respondOK(c, http.StatusOK, "Logged out", nil)
}

// Session handles GET /api/v1/auth/session, returning the identity
// behind the caller's session token.
func (h *Handler) Session(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	respondOK(c, http.StatusOK, "", gin.H{
		"hasValidSession": true,
		"customerId":      identity.CustomerID,
		"fullName":        identity.FullName,
		"email":           identity.Email,
	})
}
