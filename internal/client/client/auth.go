package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
)

// SignupRequest is the body of /auth/register.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Code     string `json:"code,omitempty"`
}

type emailBody struct {
	Email string `json:"email"`
}

type codeBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resetBody struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// NicknameCheck is the answer of /auth/check-nickname.
type NicknameCheck struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// ResetCodeResult reports whether the email belongs to an account.
type ResetCodeResult struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message,omitempty"`
}

func (c *HTTPClient) SendEmailCode(ctx context.Context, email string) error {
	return c.call(ctx, request{
		op: "send_code", method: http.MethodPost, path: "/auth/send-code",
		body: emailBody{Email: email},
	}, nil)
}

func (c *HTTPClient) VerifyEmailCode(ctx context.Context, email, code string) error {
	return c.call(ctx, request{
		op: "verify_email", method: http.MethodPost, path: "/auth/verify-email",
		body: codeBody{Email: email, Code: code},
	}, nil)
}

func (c *HTTPClient) CheckNickname(ctx context.Context, nickname string) (*NicknameCheck, error) {
	var out NicknameCheck
	err := c.call(ctx, request{
		op: "check_nickname", method: http.MethodGet, path: "/auth/check-nickname",
		query: url.Values{"nickname": {nickname}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Register(ctx context.Context, in SignupRequest) (*models.User, error) {
	var out models.User
	err := c.call(ctx, request{
		op: "register", method: http.MethodPost, path: "/auth/register", body: in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Credentials, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var out models.Credentials
	if err := c.call(ctx, request{
		op: "login", method: http.MethodPost, path: "/auth/login", body: body,
	}, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &APIError{Status: http.StatusBadGateway, Detail: "login response carries no token"}
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.call(ctx, request{op: "logout", method: http.MethodPost, path: "/auth/logout"}, nil)
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.call(ctx, request{op: "me", method: http.MethodGet, path: "/auth/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	var out models.User
	if err := c.call(ctx, request{
		op: "update_user", method: http.MethodPut, path: "/auth/update", body: patch,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) VerifyPassword(ctx context.Context, password string) error {
	body := struct {
		Password string `json:"password"`
	}{password}
	return c.call(ctx, request{
		op: "verify_password", method: http.MethodPost, path: "/auth/verify-password", body: body,
	}, nil)
}

func (c *HTTPClient) SendResetCode(ctx context.Context, email string) (*ResetCodeResult, error) {
	out := ResetCodeResult{Exists: true}
	if err := c.call(ctx, request{
		op: "send_reset_code", method: http.MethodPost, path: "/send-reset-code",
		body: emailBody{Email: email},
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) VerifyResetCode(ctx context.Context, email, code string) error {
	return c.call(ctx, request{
		op: "verify_reset_code", method: http.MethodPost, path: "/verify-reset-code",
		body: codeBody{Email: email, Code: code},
	}, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return c.call(ctx, request{
		op: "reset_password", method: http.MethodPost, path: "/reset-password",
		body: resetBody{Email: email, Code: code, NewPassword: newPassword},
	}, nil)
}

// Ping checks that the backend answers at all.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.call(ctx, request{op: "ping", method: http.MethodGet, path: "/"}, nil)
}
