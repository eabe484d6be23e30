package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lawdesk/internal/client/history"
	"github.com/dmitrijs2005/lawdesk/internal/client/models"
)

func (a *App) History(ctx context.Context, args []string) error {
	mode, err := history.ParseMode(joinArgs(args))
	if err != nil {
		return usageError("history [consultation|precedent]")
	}

	items, err := a.history.History(ctx, mode)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintf(a.out, "No viewed %ss yet.\n", mode)
		return nil
	}

	for _, it := range items {
		e := it.Entry
		when := e.CreatedAt.Format("2006-01-02 15:04")
		switch mode {
		case history.ModePrecedent:
			fmt.Fprintf(a.out, "[%s] %s  precedent %s  %s", e.ID, when, *e.PrecedentID, it.Meta.Title)
			if !it.Unavailable && it.Meta.CaseNumber != "" {
				fmt.Fprintf(a.out, " (%s, %s %s)", it.Meta.CaseNumber, it.Meta.Court, it.Meta.Date)
			}
			fmt.Fprintln(a.out)
		default:
			fmt.Fprintf(a.out, "[%s] %s  consultation %s\n", e.ID, when, *e.ConsultationID)
		}
	}
	return nil
}

func (a *App) Unview(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("unview <log id>")
	}
	if err := a.history.Remove(ctx, models.RefID(args[0])); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed from history.")
	return nil
}

func (a *App) ClearHistory(ctx context.Context, _ []string) error {
	if !confirm(a.reader, "Delete your whole view history?", a.out) {
		return nil
	}
	if err := a.history.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "History cleared.")
	return nil
}
