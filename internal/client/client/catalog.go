package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"golang.org/x/net/html"
)

func (c *HTTPClient) SearchPrecedents(ctx context.Context, keyword string) ([]models.Precedent, error) {
	return listOf[models.Precedent](ctx, c, "search_precedents", "/search/precedents/"+segment(keyword))
}

func (c *HTTPClient) PrecedentsByCategory(ctx context.Context, category string) ([]models.Precedent, error) {
	return listOf[models.Precedent](ctx, c, "precedents_by_category", "/search/precedents/category/"+segment(category))
}

func (c *HTTPClient) SearchConsultations(ctx context.Context, keyword string) ([]models.Consultation, error) {
	return listOf[models.Consultation](ctx, c, "search_consultations", "/search/consultations/"+segment(keyword))
}

func (c *HTTPClient) ConsultationsByCategory(ctx context.Context, category string) ([]models.Consultation, error) {
	return listOf[models.Consultation](ctx, c, "consultations_by_category", "/search/consultations/category/"+segment(category))
}

func listOf[T any](ctx context.Context, c *HTTPClient, op, path string) ([]T, error) {
	var out []T
	if err := c.call(ctx, request{op: op, method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PrecedentDetail fetches a precedent in JSON form. Some precedents are only
// published as statute pages; the upstream signals this with a JSON object
// whose first key is "Law", and the HTML rendition is requested instead.
func (c *HTTPClient) PrecedentDetail(ctx context.Context, id models.RefID) (*models.Document, error) {
	path := "/detail/precedent/" + segment(id.String())

	doc, err := c.document(ctx, "precedent_detail", path, url.Values{"type": {"JSON"}})
	if err != nil {
		return nil, err
	}
	if doc.Kind == models.DocumentJSON && firstKey(doc.JSON) == "Law" {
		return c.document(ctx, "precedent_detail_html", path, url.Values{"type": {"HTML"}})
	}
	return doc, nil
}

func (c *HTTPClient) ConsultationDetail(ctx context.Context, id models.RefID) (*models.Document, error) {
	return c.document(ctx, "consultation_detail", "/detail/consultation/"+segment(id.String()), nil)
}

func (c *HTTPClient) document(ctx context.Context, op, path string, query url.Values) (*models.Document, error) {
	resp, err := c.do(ctx, request{op: op, method: http.MethodGet, path: path, query: query})
	if err != nil {
		return nil, err
	}

	if resp.isJSON() {
		body := bytes.TrimSpace(resp.body)
		// A JSON string may itself carry the HTML fragment.
		if len(body) > 0 && body[0] == '"' {
			var fragment string
			if err := json.Unmarshal(body, &fragment); err != nil {
				return nil, fmt.Errorf("%s: decode response: %w", op, err)
			}
			return htmlDocument(fragment), nil
		}
		if bytes.Equal(body, []byte("null")) || bytes.Equal(body, []byte("{}")) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return &models.Document{Kind: models.DocumentJSON, JSON: json.RawMessage(body)}, nil
	}

	if len(bytes.TrimSpace(resp.body)) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return htmlDocument(string(resp.body)), nil
}

func htmlDocument(fragment string) *models.Document {
	return &models.Document{
		Kind:      models.DocumentHTML,
		HTML:      fragment,
		ViewerURL: ViewerURL(fragment),
	}
}

// ViewerURL returns the src of the first iframe/embed or the href of the
// first link in an HTML fragment, "" if there is none.
func ViewerURL(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if !hasAttr {
				continue
			}
			var want string
			switch string(name) {
			case "iframe", "embed":
				want = "src"
			case "a":
				want = "href"
			default:
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == want && len(val) > 0 {
					return string(val)
				}
				if !more {
					break
				}
			}
		}
	}
}

// firstKey reports the first key of a JSON object in document order.
func firstKey(raw json.RawMessage) string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return ""
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ""
	}
	tok, err = dec.Token()
	if err != nil {
		return ""
	}
	key, _ := tok.(string)
	return key
}
