package client

import (
	"context"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
)

// AuthAPI covers account, session and password-reset endpoints.
type AuthAPI interface {
	SendEmailCode(ctx context.Context, email string) error
	VerifyEmailCode(ctx context.Context, email, code string) error
	CheckNickname(ctx context.Context, nickname string) (*NicknameCheck, error)
	Register(ctx context.Context, in SignupRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.Credentials, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, patch models.UserPatch) (*models.User, error)
	VerifyPassword(ctx context.Context, password string) error
	SendResetCode(ctx context.Context, email string) (*ResetCodeResult, error)
	VerifyResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// ResearchAPI submits report-generation jobs.
type ResearchAPI interface {
	SubmitLegalResearch(ctx context.Context, form models.LegalResearchForm) (*models.ResearchReport, error)
	SubmitTaxResearch(ctx context.Context, form models.TaxResearchForm) (*models.ResearchReport, error)
}

// MyLogAPI covers memos and view history, scoped by user id.
type MyLogAPI interface {
	ListMemos(ctx context.Context, userID models.RefID) ([]models.Memo, error)
	CreateMemo(ctx context.Context, in models.MemoInput) (*models.Memo, error)
	UpdateMemo(ctx context.Context, in models.MemoInput) (*models.Memo, error)
	DeleteMemo(ctx context.Context, id models.RefID) error
	ListViewedLogs(ctx context.Context, userID models.RefID) ([]models.ViewedLog, error)
	CreateViewedLog(ctx context.Context, in models.ViewedLogInput) (*models.ViewedLog, error)
	DeleteViewedLog(ctx context.Context, id models.RefID) error
	DeleteAllViewedLogs(ctx context.Context, userID models.RefID) error
	PrecedentMeta(ctx context.Context, precedentID models.RefID) (*models.PrecedentMeta, error)
}

// CatalogAPI reads precedents and consultation summaries.
type CatalogAPI interface {
	SearchPrecedents(ctx context.Context, keyword string) ([]models.Precedent, error)
	PrecedentsByCategory(ctx context.Context, category string) ([]models.Precedent, error)
	PrecedentDetail(ctx context.Context, id models.RefID) (*models.Document, error)
	SearchConsultations(ctx context.Context, keyword string) ([]models.Consultation, error)
	ConsultationsByCategory(ctx context.Context, category string) ([]models.Consultation, error)
	ConsultationDetail(ctx context.Context, id models.RefID) (*models.Document, error)
}

type ChatAPI interface {
	SendMessage(ctx context.Context, category, message string) (*models.ChatReply, error)
}

type VideoAPI interface {
	Search(ctx context.Context, query string, max int) ([]models.Video, error)
}

// Client is the full backend contract implemented by HTTPClient.
type Client interface {
	AuthAPI
	ResearchAPI
	MyLogAPI
	CatalogAPI
	ChatAPI
	Ping(ctx context.Context) error
}

var (
	_ Client   = (*HTTPClient)(nil)
	_ VideoAPI = (*VideoClient)(nil)
)
