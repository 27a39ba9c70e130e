package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/plumekit/plume/internal/auth"
)

// The auth pages are the thin collaborator the platform assumes: enough
// to mint the session cookie the protected routes require.

func (h *Handler) SignupForm(c *gin.Context) {
	h.page(c, http.StatusOK, "signup.html", gin.H{"Title": "Sign up", "Username": ""})
}

func (h *Handler) Signup(c *gin.Context) {
	ctx := c.Request.Context()
	in := auth.SignupInput{
		Username: strings.TrimSpace(c.PostForm("username")),
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
	}
	user, err := h.accounts.SignUp(ctx, in)
	if err != nil {
		msg := "Could not create the account"
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			msg = "Username must be 3-150 letters or digits and password at least 6 characters"
		case errors.Is(err, auth.ErrUsernameTaken):
			msg = "Username already taken"
		default:
			h.serverError(c, err)
			return
		}
		h.page(c, http.StatusOK, "signup.html", gin.H{"Title": "Sign up", "Error": msg, "Username": in.Username})
		return
	}
	h.setSession(c, auth.Viewer{ID: user.ID, Username: user.Username})
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) LoginForm(c *gin.Context) {
	h.page(c, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Next": c.Query("next"), "Username": ""})
}

func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	username := strings.TrimSpace(c.PostForm("username"))
	user, err := h.accounts.Login(ctx, username, c.PostForm("password"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidLogin) {
			h.page(c, http.StatusOK, "login.html", gin.H{
				"Title":    "Log in",
				"Error":    "Invalid username or password",
				"Username": username,
				"Next":     c.PostForm("next"),
			})
			return
		}
		h.serverError(c, err)
		return
	}
	h.setSession(c, auth.Viewer{ID: user.ID, Username: user.Username})

	next := c.PostForm("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		// Only same-site return paths; "//host" is an open redirect too.
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) setSession(c *gin.Context, v auth.Viewer) {
	token, err := h.tokens.Issue(v)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.SetCookie(auth.CookieName, token, int(h.tokens.Lifetime().Seconds()), "/", "", false, true)
}
