package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/happeningnu/happening/internal/auth"
	"github.com/happeningnu/happening/internal/middleware"
	"github.com/happeningnu/happening/internal/model"
	"github.com/happeningnu/happening/internal/service"
	"github.com/happeningnu/happening/internal/validation"
	"github.com/happeningnu/happening/internal/view"
)

// Flash texts for account actions.
const (
	msgLoginOK            = "Login successful!"
	msgLoginFailed        = "Invalid email or password."
	msgSignupOK           = "Hi!"
	msgEmailTaken         = "Email is already registered."
	msgLoggedOut          = "You have logged out."
	msgInvalidFormRequest = "Invalid form submission."
)

// Accounts is the subset of service.AccountService used by AccountHandler.
type Accounts interface {
	Signup(ctx context.Context, form validation.SignupForm) (*model.User, error)
	Login(ctx context.Context, form validation.LoginForm) (*model.User, error)
	StartSession(ctx context.Context, userID int64) (string, error)
	Logout(ctx context.Context, token string) error
}

// AccountHandler serves login, signup and logout.
type AccountHandler struct {
	*Handler
	accounts Accounts
	cookie   middleware.SessionCookie
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(base *Handler, accounts Accounts, cookie middleware.SessionCookie) *AccountHandler {
	return &AccountHandler{
		Handler:  base,
		accounts: accounts,
		cookie:   cookie,
	}
}

// LoginForm handles GET /login.
func (h *AccountHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if auth.ViewerFromContext(r.Context()).IsLoggedIn() {
		redirect(w, r, "/")
		return
	}
	h.render(w, r, http.StatusOK, view.PageLogin, view.TitleLogin, nil)
}

// Login handles POST /login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flash(r, model.Error(msgInvalidFormRequest))
		redirect(w, r, "/login")
		return
	}

	user, err := h.accounts.Login(r.Context(), validation.LoginForm{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.flash(r, model.Error(msgLoginFailed))
			redirect(w, r, "/login")
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.signIn(w, r, user, msgLoginOK)
}

// SignupForm handles GET /signup.
func (h *AccountHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if auth.ViewerFromContext(r.Context()).IsLoggedIn() {
		redirect(w, r, "/")
		return
	}
	h.render(w, r, http.StatusOK, view.PageSignup, view.TitleSignup, nil)
}

// Signup handles POST /signup.
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flash(r, model.Error(msgInvalidFormRequest))
		redirect(w, r, "/signup")
		return
	}

	user, err := h.accounts.Signup(r.Context(), validation.SignupForm{
		Email:           r.PostForm.Get("email"),
		Username:        r.PostForm.Get("username"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
	})
	if err != nil {
		if msgs, ok := validation.Messages(err); ok {
			h.flash(r, errorFlashes(msgs)...)
			redirect(w, r, "/signup")
			return
		}
		if errors.Is(err, service.ErrEmailTaken) {
			h.flash(r, model.Error(msgEmailTaken))
			redirect(w, r, "/signup")
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.signIn(w, r, user, msgSignupOK)
}

// Logout handles GET /logout. The visitor continues with a fresh anonymous
// token so the old one cannot be replayed.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context(), auth.TokenFromContext(r.Context())); err != nil {
		h.serverError(w, r, err)
		return
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.cookie.Write(w, token)
	h.flashTo(r.Context(), token, model.Info(msgLoggedOut))

	redirect(w, r, "/")
}

// signIn replaces the visitor's token with a new authenticated session and
// sends them home. Any session the old token carried is ended.
func (h *AccountHandler) signIn(w http.ResponseWriter, r *http.Request, user *model.User, msg string) {
	ctx := r.Context()

	if err := h.accounts.Logout(ctx, auth.TokenFromContext(ctx)); err != nil {
		h.serverError(w, r, err)
		return
	}

	token, err := h.accounts.StartSession(ctx, user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.cookie.Write(w, token)
	h.flashTo(ctx, token, model.Info(msg))

	redirect(w, r, "/")
}

func errorFlashes(msgs []string) []model.Flash {
	out := make([]model.Flash, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, model.Error(m))
	}
	return out
}
