package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/services"
	"github.com/dmitrijs2005/lawdesk/internal/common"
)

// Signup walks through email verification, nickname check and the
// registration form.
func (a *App) Signup(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.SendSignupCode(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "A verification code was sent to", email)

	code, err := getSimpleText(a.reader, "Enter verification code", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.VerifySignupCode(ctx, email, code); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Email verified.")

	nickname, err := getSimpleText(a.reader, "Choose a nickname", a.out)
	if err != nil {
		return err
	}
	available, err := a.auth.CheckNickname(ctx, nickname)
	if err != nil {
		return err
	}
	if !available {
		return fmt.Errorf("nickname %q is taken", nickname)
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	again, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	user, err := a.auth.Signup(ctx, services.SignupForm{
		Email:           email,
		Code:            code,
		Nickname:        nickname,
		Password:        string(password),
		ConfirmPassword: string(again),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account created for %s. You can log in now.\n", user.Email)
	return nil
}

func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	name := email
	if user != nil && user.Nickname != "" {
		name = user.Nickname
	}
	fmt.Fprintf(a.out, "Welcome, %s\n", name)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, common.MessageLoggedOut)
	return nil
}

// ResetPassword asks for the email, the emailed code and a new password.
func (a *App) ResetPassword(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter your account email", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Enter the code from the email", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.VerifyPasswordReset(ctx, email, code); err != nil {
		return err
	}

	password, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	again, err := getPassword("Repeat new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if err := a.auth.ResetPassword(ctx, services.ResetForm{
		Email:           email,
		Code:            code,
		NewPassword:     string(password),
		ConfirmPassword: string(again),
	}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed. Log in with the new password.")
	return nil
}

func (a *App) Whoami(context.Context, []string) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	u := a.session.User()
	if u == nil {
		fmt.Fprintln(a.out, "Logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", u.Nickname, u.Email)
	return nil
}

// Profile prints the current profile; "profile edit" changes the nickname
// and, after re-entering the current password, the password.
func (a *App) Profile(ctx context.Context, args []string) error {
	user, err := a.auth.Profile(ctx)
	if err != nil {
		return err
	}
	printUser(a, user)

	if len(args) == 0 || args[0] != "edit" {
		return nil
	}

	var patch models.UserPatch
	nickname, err := getSimpleText(a.reader, "New nickname (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if nickname = strings.TrimSpace(nickname); nickname != "" && nickname != user.Nickname {
		patch.Nickname = &nickname
	}

	if confirm(a.reader, "Change password?", a.out) {
		current, err := getPassword("Current password", a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(current)
		if err := a.auth.VerifyPassword(ctx, string(current)); err != nil {
			return err
		}
		next, err := getPassword("New password", a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(next)
		pw := string(next)
		patch.Password = &pw
	}

	if patch.Nickname == nil && patch.Password == nil {
		fmt.Fprintln(a.out, "Nothing to change.")
		return nil
	}
	user, err = a.auth.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated.")
	printUser(a, user)
	return nil
}

func printUser(a *App, u *models.User) {
	if u == nil {
		return
	}
	fmt.Fprintf(a.out, "Nickname: %s\nEmail:    %s\n", u.Nickname, u.Email)
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(a.out, "Joined:   %s\n", u.CreatedAt.Format("2006-01-02"))
	}
}
