package services

import (
	"context"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
)

// Session is the auth state the services read and update.
// *session.Store implements it.
type Session interface {
	Token() string
	User() *models.User
	UserID() models.RefID
	IsAuthenticated() bool
	SetCredentials(ctx context.Context, token string, user *models.User) error
	UpdateUserInfo(ctx context.Context, patch models.UserPatch) error
	ReplaceUser(ctx context.Context, user models.User) error
	Logout(ctx context.Context) error
}

// Cache tags shared by queries and mutations.
const (
	TagUser       = "User"
	TagUserMemos  = "UserMemos"
	TagUserViewed = "UserViewed"
	TagResearch   = "Research"
	TagCatalog    = "Catalog"
)

func currentUserID(s Session) (models.RefID, error) {
	if !s.IsAuthenticated() {
		return "", ErrLoginRequired
	}
	id := s.UserID()
	if id == "" {
		return "", ErrLoginRequired
	}
	return id, nil
}
