package common

// Messages shown to the user. Components print these instead of raw errors
// when the failure class is known.
const (
	MessageConnectionFailed  = "connection failed, please check your network and try again"
	MessageNotFound          = "not found"
	MessageInfoUnavailable   = "information unavailable"
	MessageUnauthorized      = "please log in again"
	MessageEmailNotVerified  = "complete email verification first"
	MessagePasswordPolicy    = "password must be at least 8 characters and contain a special character"
	MessagePasswordMismatch  = "passwords do not match"
	MessageInvalidEmail      = "enter a valid email address"
	MessageCodeRequired      = "enter the verification code"
	MessageUnknownEmail      = "this email is not registered"
	MessageTitleRequired     = "title is required"
	MessageMessageRequired   = "message must not be empty"
	MessageUnknownCategory   = "unknown category"
	MessageResearchFailed    = "research request failed"
	MessageNicknameRequired  = "nickname is required"
	MessageLoggedOut         = "logged out"
	MessageLoginRequired     = "log in to use this command"
	MessageRequestIncomplete = "fill in the required fields"
)
