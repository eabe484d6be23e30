// Package services contains the use cases the lawdesk front end calls. They
// validate input locally, go through the query cache for reads, invalidate
// cache tags after writes and keep the session in step with the server.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/query"
	"github.com/dmitrijs2005/lawdesk/internal/common"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
)

// SignupForm is the registration form.
type SignupForm struct {
	Email           string `validate:"required,contains=@"`
	Code            string `validate:"required"`
	Nickname        string `validate:"required"`
	Password        string `validate:"required,min=8,special"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// ResetForm is the password-reset form.
type ResetForm struct {
	Email           string `validate:"required,contains=@"`
	Code            string `validate:"required"`
	NewPassword     string `validate:"required,min=8,special"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

type emailForm struct {
	Email string `validate:"required,contains=@"`
}

type codeForm struct {
	Email string `validate:"required,contains=@"`
	Code  string `validate:"required"`
}

// AuthService covers signup with email verification, login/logout,
// password reset and the profile.
//
// Signup is refused locally until VerifySignupCode succeeded for the same
// email in this process.
type AuthService interface {
	SendSignupCode(ctx context.Context, email string) error
	VerifySignupCode(ctx context.Context, email, code string) error
	CheckNickname(ctx context.Context, nickname string) (bool, error)
	Signup(ctx context.Context, form SignupForm) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyPasswordReset(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, form ResetForm) error
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error)
	VerifyPassword(ctx context.Context, password string) error
	Ping(ctx context.Context) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type authService struct {
	api     client.AuthAPI
	ping    pinger
	session Session
	cache   *query.Cache
	log     logging.Logger

	mu       sync.Mutex
	verified map[string]bool

	profile       query.Query[models.RefID, *models.User]
	updateProfile query.Mutation[models.UserPatch, *models.User]
}

// NewAuthService wires the auth use cases. api usually is the same
// *client.HTTPClient for both parameters.
func NewAuthService(api client.AuthAPI, ping pinger, session Session, cache *query.Cache, log logging.Logger) AuthService {
	s := &authService{
		api:      api,
		ping:     ping,
		session:  session,
		cache:    cache,
		log:      log,
		verified: make(map[string]bool),
	}
	s.profile = query.Query[models.RefID, *models.User]{
		Name: "profile",
		Tags: []string{TagUser},
		Fetch: func(ctx context.Context, _ models.RefID) (*models.User, error) {
			return api.CurrentUser(ctx)
		},
	}
	s.updateProfile = query.Mutation[models.UserPatch, *models.User]{
		Name:        "updateProfile",
		Invalidates: []string{TagUser},
		Do:          api.UpdateUser,
	}
	return s
}

func (s *authService) SendSignupCode(ctx context.Context, email string) error {
	if err := check(emailForm{Email: email}); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.verified, email)
	s.mu.Unlock()

	return s.api.SendEmailCode(ctx, email)
}

func (s *authService) VerifySignupCode(ctx context.Context, email, code string) error {
	if err := check(codeForm{Email: email, Code: code}); err != nil {
		return err
	}
	if err := s.api.VerifyEmailCode(ctx, email, code); err != nil {
		return err
	}
	s.mu.Lock()
	s.verified[email] = true
	s.mu.Unlock()
	return nil
}

func (s *authService) CheckNickname(ctx context.Context, nickname string) (bool, error) {
	if nickname == "" {
		return false, invalid("Nickname", common.MessageNicknameRequired)
	}
	res, err := s.api.CheckNickname(ctx, nickname)
	if err != nil {
		return false, err
	}
	return res.Available, nil
}

func (s *authService) Signup(ctx context.Context, form SignupForm) (*models.User, error) {
	s.mu.Lock()
	ok := s.verified[form.Email]
	s.mu.Unlock()
	if !ok {
		return nil, invalid("Email", common.MessageEmailNotVerified)
	}
	if err := check(form); err != nil {
		return nil, err
	}

	user, err := s.api.Register(ctx, client.SignupRequest{
		Email:    form.Email,
		Password: form.Password,
		Nickname: form.Nickname,
		Code:     form.Code,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.verified, form.Email)
	s.mu.Unlock()

	s.log.Info(ctx, "account registered", "email", form.Email)
	return user, nil
}

// Login stores the returned credentials in the session and drops cached
// results of any previous user.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if err := check(emailForm{Email: email}); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, invalid("Password", common.MessageRequestIncomplete)
	}

	creds, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.cache.Reset()
	if err := s.session.SetCredentials(ctx, creds.Token, creds.User); err != nil {
		s.log.Warn(ctx, "session not persisted", "error", err)
	}

	if creds.User == nil {
		user, err := s.api.CurrentUser(ctx)
		if err != nil {
			s.log.Warn(ctx, "cannot load user after login", "error", err)
		} else if err := s.session.ReplaceUser(ctx, *user); err != nil {
			s.log.Warn(ctx, "session not persisted", "error", err)
		}
	}

	s.log.Info(ctx, "logged in", "email", email)
	return s.session.User(), nil
}

// Logout always ends the local session; a failed server call is only
// logged.
func (s *authService) Logout(ctx context.Context) error {
	if s.session.Token() != "" {
		if err := s.api.Logout(ctx); err != nil {
			s.log.Warn(ctx, "server logout failed", "error", err)
		}
	}
	s.cache.Reset()
	return s.session.Logout(ctx)
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := check(emailForm{Email: email}); err != nil {
		return err
	}
	res, err := s.api.SendResetCode(ctx, email)
	if err != nil {
		return err
	}
	if !res.Exists {
		return ErrUnknownEmail
	}
	return nil
}

func (s *authService) VerifyPasswordReset(ctx context.Context, email, code string) error {
	if err := check(codeForm{Email: email, Code: code}); err != nil {
		return err
	}
	return s.api.VerifyResetCode(ctx, email, code)
}

func (s *authService) ResetPassword(ctx context.Context, form ResetForm) error {
	if err := check(form); err != nil {
		return err
	}
	return s.api.ResetPassword(ctx, form.Email, form.Code, form.NewPassword)
}

// Profile reads the current user through the cache and refreshes the
// session copy with it.
func (s *authService) Profile(ctx context.Context) (*models.User, error) {
	id, err := currentUserID(s.session)
	if err != nil {
		return nil, err
	}
	user, err := query.Fetch(ctx, s.cache, s.profile, id)
	if err != nil {
		return nil, err
	}
	if err := s.session.ReplaceUser(ctx, *user); err != nil {
		s.log.Warn(ctx, "session not persisted", "error", err)
	}
	return s.session.User(), nil
}

func (s *authService) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	if _, err := currentUserID(s.session); err != nil {
		return nil, err
	}
	if patch.Nickname != nil && *patch.Nickname == "" {
		return nil, invalid("Nickname", common.MessageNicknameRequired)
	}
	if patch.Email != nil {
		if err := check(emailForm{Email: *patch.Email}); err != nil {
			return nil, err
		}
	}
	if patch.Password != nil && !ValidPassword(*patch.Password) {
		return nil, invalid("Password", common.MessagePasswordPolicy)
	}

	if _, err := query.Mutate(ctx, s.cache, s.updateProfile, patch); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	local := models.UserPatch{Email: patch.Email, Nickname: patch.Nickname}
	if err := s.session.UpdateUserInfo(ctx, local); err != nil {
		s.log.Warn(ctx, "session not persisted", "error", err)
	}
	return s.session.User(), nil
}

func (s *authService) VerifyPassword(ctx context.Context, password string) error {
	if password == "" {
		return invalid("Password", common.MessageRequestIncomplete)
	}
	return s.api.VerifyPassword(ctx, password)
}

func (s *authService) Ping(ctx context.Context) error {
	return s.ping.Ping(ctx)
}
