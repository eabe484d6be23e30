package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T, api *fakeAPI, sess *fakeSession) AuthService {
	t.Helper()
	return NewAuthService(api, api, sess, newCache(t), nop())
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		pw   string
		want bool
	}{
		{"abcdefg!", true},
		{"abcdefgh", false},
		{"a!", false},
		{"", false},
		{"long enough?", true},
	}
	for _, tt := range tests {
		t.Run(tt.pw, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPassword(tt.pw))
		})
	}
}

func TestSignup_RequiresVerifiedEmail(t *testing.T) {
	api := newFakeAPI()
	auth := newAuth(t, api, &fakeSession{})
	ctx := context.Background()

	form := SignupForm{Email: "a@b.io", Code: "123456", Nickname: "n", Password: "secret!!", ConfirmPassword: "secret!!"}

	_, err := auth.Signup(ctx, form)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, common.MessageEmailNotVerified, ve.Message)
	assert.Zero(t, api.count("register"), "no request before verification")

	require.NoError(t, auth.VerifySignupCode(ctx, "a@b.io", "123456"))
	user, err := auth.Signup(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "a@b.io", user.Email)
	assert.Equal(t, 1, api.count("register"))
}

func TestSignup_ValidationNeverReachesNetwork(t *testing.T) {
	api := newFakeAPI()
	auth := newAuth(t, api, &fakeSession{})
	ctx := context.Background()
	require.NoError(t, auth.VerifySignupCode(ctx, "a@b.io", "1"))

	tests := []struct {
		name string
		form SignupForm
		msg  string
	}{
		{"weak password", SignupForm{Email: "a@b.io", Code: "1", Nickname: "n", Password: "abcdefgh", ConfirmPassword: "abcdefgh"}, common.MessagePasswordPolicy},
		{"mismatch", SignupForm{Email: "a@b.io", Code: "1", Nickname: "n", Password: "secret!!", ConfirmPassword: "secret!?"}, common.MessagePasswordMismatch},
		{"no nickname", SignupForm{Email: "a@b.io", Code: "1", Password: "secret!!", ConfirmPassword: "secret!!"}, common.MessageNicknameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Signup(ctx, tt.form)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.msg, ve.Message)
		})
	}
	assert.Zero(t, api.count("register"))
}

func TestVerifySignupCode_FailureKeepsSignupBlocked(t *testing.T) {
	api := newFakeAPI()
	api.verifyErr = errors.New("wrong code")
	auth := newAuth(t, api, &fakeSession{})
	ctx := context.Background()

	require.Error(t, auth.VerifySignupCode(ctx, "a@b.io", "000000"))
	_, err := auth.Signup(ctx, SignupForm{Email: "a@b.io", Code: "000000", Nickname: "n", Password: "secret!!", ConfirmPassword: "secret!!"})
	require.Error(t, err)
	assert.Zero(t, api.count("register"))
}

func TestLogin_StoresSession(t *testing.T) {
	api := newFakeAPI()
	sess := &fakeSession{}
	auth := newAuth(t, api, sess)

	user, err := auth.Login(context.Background(), "u@x.io", "secret!!")
	require.NoError(t, err)
	assert.Equal(t, "nick", user.Nickname)
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, "tok", sess.Token())
}

func TestLogin_LoadsUserWhenResponseHasNone(t *testing.T) {
	api := newFakeAPI()
	api.loginFn = func(string, string) (*models.Credentials, error) {
		return &models.Credentials{Token: "tok"}, nil
	}
	sess := &fakeSession{}
	auth := newAuth(t, api, sess)

	user, err := auth.Login(context.Background(), "u@x.io", "secret!!")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "server-nick", user.Nickname)
	assert.Equal(t, 1, api.count("currentUser"))
}

func TestLogin_FailureLeavesSessionEmpty(t *testing.T) {
	api := newFakeAPI()
	api.loginFn = func(string, string) (*models.Credentials, error) {
		return nil, errors.New("bad credentials")
	}
	sess := &fakeSession{}
	auth := newAuth(t, api, sess)

	_, err := auth.Login(context.Background(), "u@x.io", "nope")
	require.Error(t, err)
	assert.False(t, sess.IsAuthenticated())
}

func TestLogout_AlwaysClearsSession(t *testing.T) {
	api := newFakeAPI()
	sess := loggedIn("1")
	auth := newAuth(t, api, sess)

	require.NoError(t, auth.Logout(context.Background()))
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, 1, api.count("logout"))
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	api := newFakeAPI()
	auth := newAuth(t, api, &fakeSession{})

	err := auth.RequestPasswordReset(context.Background(), "ghost@x.io")
	require.ErrorIs(t, err, ErrUnknownEmail)

	require.NoError(t, auth.RequestPasswordReset(context.Background(), "u@x.io"))
}

func TestResetPassword_Validation(t *testing.T) {
	api := newFakeAPI()
	auth := newAuth(t, api, &fakeSession{})

	err := auth.ResetPassword(context.Background(), ResetForm{Email: "u@x.io", Code: "1", NewPassword: "short", ConfirmPassword: "short"})
	require.Error(t, err)
	assert.Zero(t, api.count("resetPassword"))

	err = auth.ResetPassword(context.Background(), ResetForm{Email: "u@x.io", Code: "1", NewPassword: "secret!!", ConfirmPassword: "secret!!"})
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("resetPassword"))
}

func TestProfile_CachedUntilUpdate(t *testing.T) {
	api := newFakeAPI()
	sess := loggedIn("1")
	auth := newAuth(t, api, sess)
	ctx := context.Background()

	_, err := auth.Profile(ctx)
	require.NoError(t, err)
	_, err = auth.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("currentUser"))

	nick := "renamed"
	user, err := auth.UpdateProfile(ctx, models.UserPatch{Nickname: &nick})
	require.NoError(t, err)
	assert.Equal(t, "renamed", user.Nickname)

	_, err = auth.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.count("currentUser"), "update invalidates the profile")
}

func TestProfile_RequiresLogin(t *testing.T) {
	auth := newAuth(t, newFakeAPI(), &fakeSession{})
	_, err := auth.Profile(context.Background())
	require.ErrorIs(t, err, ErrLoginRequired)
}
