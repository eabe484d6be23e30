package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
)

func (c *HTTPClient) SubmitLegalResearch(ctx context.Context, form models.LegalResearchForm) (*models.ResearchReport, error) {
	return c.submitResearch(ctx, "legal", form)
}

func (c *HTTPClient) SubmitTaxResearch(ctx context.Context, form models.TaxResearchForm) (*models.ResearchReport, error) {
	return c.submitResearch(ctx, "tax", form)
}

// submitResearch is neither retried nor bound by the default timeout: the
// generator runs for minutes and a second submission would start a second
// report.
func (c *HTTPClient) submitResearch(ctx context.Context, kind string, form any) (*models.ResearchReport, error) {
	var out models.ResearchReport
	if err := c.call(ctx, request{
		op:     "research_" + kind,
		method: http.MethodPost,
		path:   "/deepresearch/structured-research/" + kind,
		body:   form,
		long:   true,
	}, &out); err != nil {
		return nil, err
	}
	out.Kind = kind
	return &out, nil
}
