package pages

import (
	"VPN-Admin-dashboard/internal/api"
	"context"
	"errors"
)

type LoginBackend interface {
	Login(ctx context.Context, password string) (string, error)
}

// Authenticator is the session a login moves to the authenticated state.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) error
}

// LoginError is a failed login with the text to show on the form.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	return "login failed: " + e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

type Login struct {
	backend LoginBackend
	sess    Authenticator
}

func NewLogin(b LoginBackend, sess Authenticator) *Login {
	return &Login{backend: b, sess: sess}
}

// Submit exchanges password for a token and authenticates the session. On
// any failure the session is left untouched and a *LoginError is returned.
func (l *Login) Submit(ctx context.Context, password string) error {
	token, err := l.backend.Login(ctx, password)
	if err != nil {
		return &LoginError{Message: loginFailure(err), Err: err}
	}
	if err := l.sess.Authenticate(ctx, token); err != nil {
		return &LoginError{Message: "Unable to start session", Err: err}
	}
	return nil
}

func loginFailure(err error) string {
	var apiErr *api.APIError
	switch {
	case api.IsNetwork(err):
		return "Unable to connect to backend"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	}
	return "Invalid credentials"
}
