package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
)

// VideoClient reads the external video listing (YouTube Data API v3 search).
type VideoClient struct {
	api *HTTPClient
	key string
}

// NewVideoClient wraps an HTTPClient pointed at the video API base URL. The
// wrapped client should carry no TokenSource: the session token must never
// leave for a third party.
func NewVideoClient(api *HTTPClient, apiKey string) *VideoClient {
	return &VideoClient{api: api, key: apiKey}
}

type videoSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (v *VideoClient) Search(ctx context.Context, query string, max int) ([]models.Video, error) {
	q := url.Values{
		"part":       {"snippet"},
		"type":       {"video"},
		"order":      {"date"},
		"q":          {query},
		"maxResults": {strconv.Itoa(max)},
	}
	if v.key != "" {
		q.Set("key", v.key)
	}

	var resp videoSearchResponse
	if err := v.api.call(ctx, request{op: "video_search", method: http.MethodGet, path: "/search", query: q}, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		thumb := item.Snippet.Thumbnails["medium"].URL
		if thumb == "" {
			thumb = item.Snippet.Thumbnails["default"].URL
		}
		out = append(out, models.Video{
			ID:           item.ID.VideoID,
			Title:        item.Snippet.Title,
			Channel:      item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
			ThumbnailURL: thumb,
		})
	}
	return out, nil
}
