package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/services"
)

// field is one prompt of a research form.
type field struct {
	prompt string
	dst    *string
}

func (a *App) fill(fields []field) error {
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

// Research collects a legal or tax form, waits for the generated report
// and offers to export it.
func (a *App) Research(ctx context.Context, args []string) error {
	const usage = "research legal|tax"
	if len(args) != 1 {
		return usageError(usage)
	}

	var (
		report *models.ResearchReport
		err    error
	)
	switch args[0] {
	case "legal":
		var f models.LegalResearchForm
		if err := a.fill([]field{
			{"Case type (e.g. lease, loan, damages)", &f.CaseType},
			{"Incident date (YYYY-MM-DD)", &f.IncidentDate},
			{"Other party", &f.RelatedParty},
			{"What happened", &f.FactDetails},
			{"Evidence you have", &f.Evidence},
			{"Actions taken so far", &f.PriorAction},
			{"Desired outcome", &f.DesiredResult},
		}); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Generating the legal review, this can take a couple of minutes...")
		report, err = a.research.SubmitLegal(ctx, f)
	case "tax":
		var f models.TaxResearchForm
		if err := a.fill([]field{
			{"Report type (e.g. income tax, VAT)", &f.ReportType},
			{"Reporting period", &f.ReportPeriod},
			{"Income type", &f.IncomeType},
			{"Your concern", &f.Concern},
			{"Desired outcome", &f.DesiredResult},
			{"Additional information", &f.AdditionalInfo},
		}); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Generating the tax review, this can take a couple of minutes...")
		report, err = a.research.SubmitTax(ctx, f)
	default:
		return usageError(usage)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, report.FinalReport)
	if confirm(a.reader, "Export this report?", a.out) {
		return a.export(ctx, *report)
	}
	return nil
}

// Reports lists locally kept reports and exports the chosen one.
func (a *App) Reports(ctx context.Context, _ []string) error {
	reports, err := a.research.Recent(ctx, 20)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(a.out, "No reports yet. Use 'research legal' or 'research tax'.")
		return nil
	}
	for i, r := range reports {
		fmt.Fprintf(a.out, "%2d. %-5s %s  %s\n", i+1, r.Kind, r.Timestamp, services.Truncate(r.FinalReport, snippetLen))
	}

	answer, err := getSimpleText(a.reader, "Number to export (empty to skip)", a.out)
	if err != nil || answer == "" {
		return nil
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(reports) {
		return fmt.Errorf("pick a number between 1 and %d", len(reports))
	}
	return a.export(ctx, reports[n-1])
}

func (a *App) export(ctx context.Context, r models.ResearchReport) error {
	res, err := a.research.Export(ctx, r)
	if res != nil {
		fmt.Fprintln(a.out, "Saved to", res.Path)
		if res.URL != "" {
			fmt.Fprintln(a.out, "Download link:", res.URL)
		}
	}
	if err != nil && res != nil {
		return errors.Join(errors.New("the file was saved locally but not uploaded"), err)
	}
	return err
}
