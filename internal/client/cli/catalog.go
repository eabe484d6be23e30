package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/services"
)

const snippetLen = 60

func (a *App) Search(ctx context.Context, args []string) error {
	keyword := joinArgs(args)
	if keyword == "" {
		return usageError("search <keyword>")
	}
	return browse(a, func(page int) (services.Page[models.Precedent], error) {
		return a.catalog.SearchPrecedents(ctx, keyword, page)
	}, a.printPrecedent)
}

func (a *App) Consult(ctx context.Context, args []string) error {
	keyword := joinArgs(args)
	if keyword == "" {
		return usageError("consult <keyword>")
	}
	return browse(a, func(page int) (services.Page[models.Consultation], error) {
		return a.catalog.SearchConsultations(ctx, keyword, page)
	}, a.printConsultation)
}

func (a *App) Category(ctx context.Context, args []string) error {
	const usage = "category precedent|consultation <name>"
	if len(args) < 2 {
		return usageError(usage)
	}
	name := joinArgs(args[1:])
	switch args[0] {
	case "precedent":
		return browse(a, func(page int) (services.Page[models.Precedent], error) {
			return a.catalog.PrecedentsByCategory(ctx, name, page)
		}, a.printPrecedent)
	case "consultation":
		return browse(a, func(page int) (services.Page[models.Consultation], error) {
			return a.catalog.ConsultationsByCategory(ctx, name, page)
		}, a.printConsultation)
	default:
		return usageError(usage)
	}
}

func (a *App) Categories(context.Context, []string) error {
	for _, c := range services.Categories {
		fmt.Fprintf(a.out, "  %-30s %s\n", c.Key, c.Label)
	}
	return nil
}

func (a *App) Detail(ctx context.Context, args []string) error {
	const usage = "detail precedent|consultation <id>"
	if len(args) != 2 {
		return usageError(usage)
	}
	id := models.RefID(args[1])

	var (
		doc *models.Document
		err error
	)
	switch args[0] {
	case "precedent":
		doc, err = a.catalog.PrecedentDetail(ctx, id)
	case "consultation":
		doc, err = a.catalog.ConsultationDetail(ctx, id)
	default:
		return usageError(usage)
	}
	if err != nil {
		return err
	}
	return a.printDocument(doc)
}

// browse prints page 1 and then asks for another page number until the
// user enters nothing.
func browse[T any](a *App, load func(page int) (services.Page[T], error), show func(T)) error {
	page := 1
	for {
		p, err := load(page)
		if err != nil {
			return err
		}
		if p.Total == 0 {
			fmt.Fprintln(a.out, "No results.")
			return nil
		}
		for _, item := range p.Items {
			show(item)
		}
		fmt.Fprintf(a.out, "page %d/%d, %d results\n", p.Number, p.Pages, p.Total)
		if p.Pages <= 1 {
			return nil
		}

		answer, err := getSimpleText(a.reader, "Page number (n next, p previous, empty to stop)", a.out)
		if err != nil || answer == "" {
			return nil
		}
		switch answer {
		case "n":
			page = p.Number + 1
		case "p":
			page = p.Number - 1
		default:
			n, err := strconv.Atoi(answer)
			if err != nil {
				return nil
			}
			page = n
		}
	}
}

func (a *App) printPrecedent(p models.Precedent) {
	fmt.Fprintf(a.out, "[%s] %s  %s  %s %s\n", p.ID, services.Truncate(p.CaseName, snippetLen), p.CaseNumber, p.Court, p.Date)
}

func (a *App) printConsultation(c models.Consultation) {
	fmt.Fprintf(a.out, "[%s] %s  (%s)\n", c.ID, services.Truncate(c.Title, snippetLen), c.Category)
	if c.Question != "" {
		fmt.Fprintln(a.out, "    "+services.Truncate(c.Question, snippetLen))
	}
}

func (a *App) printDocument(doc *models.Document) error {
	switch doc.Kind {
	case models.DocumentHTML:
		if doc.ViewerURL != "" {
			fmt.Fprintln(a.out, "Open in browser:", doc.ViewerURL)
			return nil
		}
		fmt.Fprintln(a.out, doc.HTML)
	default:
		var buf bytes.Buffer
		if err := json.Indent(&buf, doc.JSON, "", "  "); err != nil {
			fmt.Fprintln(a.out, string(doc.JSON))
			return nil
		}
		fmt.Fprintln(a.out, buf.String())
	}
	return nil
}
