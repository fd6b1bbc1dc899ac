// Package api is the HTTP surface over the FitGate core. The core never
// sees HTTP; this layer only extracts the bearer token and maps typed
// rejections onto status codes and the JSON error envelope.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fitgate/fitgate/core/flow"
	"github.com/fitgate/fitgate/core/identity"
	"github.com/labstack/echo/v4"
)

const identityKey = "fitgate.identity"

type Handler struct {
	auth      *flow.Authenticator
	registrar *flow.Registrar
}

func NewHandler(auth *flow.Authenticator, registrar *flow.Registrar) *Handler {
	return &Handler{auth: auth, registrar: registrar}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.HandleRegister)
	g.POST("/login", h.HandleLogin)
	g.POST("/logout", h.HandleLogout)

	protected := g.Group("")
	protected.Use(h.AuthMiddleware)
	protected.GET("/whoami", h.HandleWhoAmI)
}

func (h *Handler) HandleRegister(c echo.Context) error {
	var body struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope("bad_request", "Invalid request body"))
	}

	ident, err := h.registrar.Register(c.Request().Context(), body.Username, body.Password, body.DisplayName, body.Role)
	if err != nil {
		return h.reject(c, err)
	}
	return c.JSON(http.StatusOK, ident)
}

func (h *Handler) HandleLogin(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope("bad_request", "Invalid request body"))
	}

	tok, err := h.auth.Login(c.Request().Context(), body.Username, body.Password, body.Role)
	if err != nil {
		return h.reject(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token":      tok.Value,
		"expires_at": tok.ExpiresAt,
	})
}

func (h *Handler) HandleLogout(c echo.Context) error {
	token := bearerToken(c)
	if err := h.auth.Logout(c.Request().Context(), token); err != nil {
		return h.reject(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) HandleWhoAmI(c echo.Context) error {
	ident := c.Get(identityKey).(*identity.Identity)
	return c.JSON(http.StatusOK, ident)
}

// AuthMiddleware is the request-entry guard every protected route goes
// through. Missing, unknown, and expired tokens all reject the same way.
func (h *Handler) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, err := h.auth.Authenticate(c.Request().Context(), bearerToken(c))
		if err != nil {
			return h.reject(c, err)
		}
		c.Set(identityKey, ident)
		return next(c)
	}
}

func (h *Handler) reject(c echo.Context, err error) error {
	var authErr *flow.AuthError
	if errors.As(err, &authErr) {
		return c.JSON(statusFor(authErr), errorEnvelope(authErr.Code, authErr.Message))
	}
	return c.JSON(http.StatusInternalServerError, errorEnvelope("internal", "Internal server error"))
}

func statusFor(err *flow.AuthError) int {
	switch err.Code {
	case "missing_input", "bad_request", "username_taken":
		return http.StatusBadRequest
	case "invalid_credentials", "login_required":
		return http.StatusUnauthorized
	case "account_disabled":
		return http.StatusForbidden
	case "account_locked":
		return http.StatusLocked
	case "rate_limited":
		return http.StatusTooManyRequests
	default:
		return http.StatusUnauthorized
	}
}

func errorEnvelope(code, message string) map[string]string {
	return map[string]string{"error": code, "message": message}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
