package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"annotation-service/internal/auth"
)

// LoginHandler reports session state and where the browser should go to
// change it. Credentials live with the external identity provider.
type LoginHandler struct {
	loginURL  string
	logoutURL string
}

func NewLoginHandler(loginURL, logoutURL string) *LoginHandler {
	return &LoginHandler{loginURL: loginURL, logoutURL: logoutURL}
}

type loginStatus struct {
	LoggedIn bool   `json:"loggedIn"`
	URL      string `json:"url"`
	Email    string `json:"email,omitempty"`
}

func (h *LoginHandler) Status(c echo.Context) error {
	if email, err := auth.GetUserEmail(c); err == nil {
		return c.JSON(http.StatusOK, loginStatus{LoggedIn: true, URL: h.logoutURL, Email: email})
	}
	return c.JSON(http.StatusOK, loginStatus{LoggedIn: false, URL: h.loginURL})
}
