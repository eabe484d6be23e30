package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
)

func (c *HTTPClient) ListMemos(ctx context.Context, userID models.RefID) ([]models.Memo, error) {
	var out []models.Memo
	if err := c.call(ctx, request{
		op: "list_memos", method: http.MethodGet, path: "/mylog/memo/" + segment(userID.String()),
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateMemo(ctx context.Context, in models.MemoInput) (*models.Memo, error) {
	var out models.Memo
	if err := c.call(ctx, request{
		op: "create_memo", method: http.MethodPost, path: "/mylog/memo", body: in, retry: true,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateMemo(ctx context.Context, in models.MemoInput) (*models.Memo, error) {
	var out models.Memo
	if err := c.call(ctx, request{
		op: "update_memo", method: http.MethodPut, path: "/mylog/memo/" + segment(in.ID.String()),
		body: in, retry: true,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMemo is a soft delete on the backend; the row comes back with
// is_deleted set on later listings.
func (c *HTTPClient) DeleteMemo(ctx context.Context, id models.RefID) error {
	body := struct {
		IsDeleted bool `json:"is_deleted"`
	}{true}
	return c.call(ctx, request{
		op: "delete_memo", method: http.MethodDelete, path: "/mylog/memo/" + segment(id.String()), body: body,
	}, nil)
}

func (c *HTTPClient) ListViewedLogs(ctx context.Context, userID models.RefID) ([]models.ViewedLog, error) {
	var out []models.ViewedLog
	if err := c.call(ctx, request{
		op: "list_viewed", method: http.MethodGet, path: "/mylog/viewed/" + segment(userID.String()),
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateViewedLog(ctx context.Context, in models.ViewedLogInput) (*models.ViewedLog, error) {
	var out models.ViewedLog
	if err := c.call(ctx, request{
		op: "create_viewed", method: http.MethodPost, path: "/mylog/viewed", body: in, retry: true,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteViewedLog(ctx context.Context, id models.RefID) error {
	return c.call(ctx, request{
		op: "delete_viewed", method: http.MethodDelete, path: "/mylog/viewed/" + segment(id.String()),
	}, nil)
}

func (c *HTTPClient) DeleteAllViewedLogs(ctx context.Context, userID models.RefID) error {
	return c.call(ctx, request{
		op: "delete_all_viewed", method: http.MethodDelete, path: "/mylog/viewed/user/" + segment(userID.String()),
	}, nil)
}

// PrecedentMeta fetches the display metadata of one viewed precedent.
func (c *HTTPClient) PrecedentMeta(ctx context.Context, precedentID models.RefID) (*models.PrecedentMeta, error) {
	var out models.PrecedentMeta
	if err := c.call(ctx, request{
		op: "precedent_meta", method: http.MethodGet,
		path: "/mylog/viewed/precedent/" + segment(precedentID.String()),
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
