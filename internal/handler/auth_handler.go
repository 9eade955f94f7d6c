package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sturmfeder/guild-portal/internal/domain"
	"github.com/sturmfeder/guild-portal/internal/dto"
	"github.com/sturmfeder/guild-portal/internal/service"
	"github.com/sturmfeder/guild-portal/internal/utils"
)

// AuthHandler handles the Battle.net login flow and session endpoints
type AuthHandler struct {
	links        service.LinkService
	sessions     *utils.SessionManager
	secureCookie bool
	loginURL     string
	dashboardURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(links service.LinkService, sessions *utils.SessionManager, secureCookie bool, loginURL, dashboardURL string) *AuthHandler {
	return &AuthHandler{
		links:        links,
		sessions:     sessions,
		secureCookie: secureCookie,
		loginURL:     loginURL,
		dashboardURL: dashboardURL,
	}
}

// Login starts the Battle.net OAuth flow
// @Summary Start Battle.net login
// @Description Redirects the browser to the Battle.net authorization page
// @Tags auth
// @Success 302
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/battlenet [get]
func (h *AuthHandler) Login(c *gin.Context) {
	authURL, err := h.links.InitiateLink(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to start Battle.net login",
		})
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// Callback completes the Battle.net OAuth flow. Both success and
// failure end in a browser redirect; failures carry a machine-readable
// error code as a query parameter.
// @Summary Battle.net OAuth callback
// @Tags auth
// @Success 302
// @Router /auth/battlenet/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	result, err := h.links.HandleCallback(c.Request.Context(), service.CallbackParams{
		Code:       c.Query("code"),
		State:      c.Query("state"),
		ErrorParam: c.Query("error"),
	})
	if err != nil {
		c.Redirect(http.StatusFound, h.loginRedirect(err))
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, result.SessionToken, h.sessions.SessionExpirySeconds(), "/", "", h.secureCookie, true)

	c.Redirect(http.StatusFound, h.dashboardURL)
}

// Logout clears the member session cookie
// @Summary Logout member
// @Tags auth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

// GetMe returns the linked account of the current session
// @Summary Get current member
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	account, err := h.links.GetAccount(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAccountResponse(account))
}

// loginRedirect builds the failure redirect back to the login page
func (h *AuthHandler) loginRedirect(err error) string {
	code := "login_failed"
	switch {
	case errors.Is(err, domain.ErrOAuthDenied):
		code = "access_denied"
	case errors.Is(err, domain.ErrMissingParameters):
		code = "missing_parameters"
	case errors.Is(err, domain.ErrInvalidState):
		code = "invalid_state"
	}

	return fmt.Sprintf("%s?error=%s", h.loginURL, url.QueryEscape(code))
}
