package services

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/lawdesk/internal/common"
	"github.com/go-playground/validator/v10"
)

// SpecialChars is the set a password must draw at least one character from.
const SpecialChars = `!@#$%^&*(),.?":{}|<>`

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("special", func(fl validator.FieldLevel) bool {
		return strings.ContainsAny(fl.Field().String(), SpecialChars)
	})
	return v
}

// fieldMessages maps "Field.tag" (or "tag") to the user-facing message.
var fieldMessages = map[string]string{
	"Email.required":           common.MessageInvalidEmail,
	"Email.contains":           common.MessageInvalidEmail,
	"Code.required":            common.MessageCodeRequired,
	"Nickname.required":        common.MessageNicknameRequired,
	"Password.min":             common.MessagePasswordPolicy,
	"Password.special":         common.MessagePasswordPolicy,
	"Password.required":        common.MessagePasswordPolicy,
	"NewPassword.min":          common.MessagePasswordPolicy,
	"NewPassword.special":      common.MessagePasswordPolicy,
	"NewPassword.required":     common.MessagePasswordPolicy,
	"ConfirmPassword.eqfield":  common.MessagePasswordMismatch,
	"ConfirmPassword.required": common.MessagePasswordMismatch,
	"Title.required":           common.MessageTitleRequired,
	"Message.required":         common.MessageMessageRequired,
}

// check validates v and reports the first failing field as a
// *ValidationError.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = common.MessageRequestIncomplete
	}
	return invalid(fe.Field(), msg)
}

// ValidPassword applies the signup password rule: at least 8 characters
// and at least one of SpecialChars.
func ValidPassword(pw string) bool {
	return validate.Var(pw, "min=8,special") == nil
}
