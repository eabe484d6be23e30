package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/services"
)

func (a *App) Memos(ctx context.Context, args []string) error {
	order := services.MemoLatest
	if len(args) > 0 {
		switch services.MemoOrder(args[0]) {
		case services.MemoLatest, services.MemoOldest:
			order = services.MemoOrder(args[0])
		default:
			return usageError("memos [latest|oldest]")
		}
	}

	memos, err := a.memos.List(ctx, order)
	if err != nil {
		return err
	}
	if len(memos) == 0 {
		fmt.Fprintln(a.out, "No memos yet. Use 'addmemo' to write one.")
		return nil
	}
	for _, m := range memos {
		printMemo(a, m)
	}
	return nil
}

func printMemo(a *App, m models.Memo) {
	fmt.Fprintf(a.out, "[%s] %s", m.ID, m.Title)
	if m.EventDate != nil {
		fmt.Fprintf(a.out, " (on %s)", m.EventDate.Format("2006-01-02"))
	}
	if m.Notification {
		fmt.Fprint(a.out, " *")
	}
	fmt.Fprintln(a.out)
	if m.Content != "" {
		fmt.Fprintln(a.out, "    "+services.Truncate(m.Content, 80))
	}
}

func (a *App) AddMemo(ctx context.Context, _ []string) error {
	in, err := a.inputMemo(models.Memo{})
	if err != nil {
		return err
	}
	m, err := a.memos.Save(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Memo %s saved.\n", m.ID)
	return nil
}

// EditMemo prompts for each field showing the current value; empty input
// keeps it.
func (a *App) EditMemo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("editmemo <id>")
	}
	id := models.RefID(args[0])

	memos, err := a.memos.List(ctx, services.MemoLatest)
	if err != nil {
		return err
	}
	var current *models.Memo
	for i := range memos {
		if memos[i].ID == id {
			current = &memos[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("memo %s not found", id)
	}

	in, err := a.inputMemo(*current)
	if err != nil {
		return err
	}
	in.ID = id
	if _, err := a.memos.Save(ctx, in); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Memo %s updated.\n", id)
	return nil
}

func (a *App) DeleteMemo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delmemo <id>")
	}
	if err := a.memos.Delete(ctx, models.RefID(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Memo %s deleted.\n", args[0])
	return nil
}

func (a *App) inputMemo(cur models.Memo) (models.MemoInput, error) {
	in := models.MemoInput{
		Title:        cur.Title,
		Content:      cur.Content,
		EventDate:    cur.EventDate,
		Notification: cur.Notification,
	}

	title, err := getSimpleText(a.reader, withCurrent("Title", cur.Title), a.out)
	if err != nil {
		return in, err
	}
	if title != "" {
		in.Title = title
	}

	content, err := GetMultiline(a.reader, withCurrent("Content", services.Truncate(cur.Content, 40)), a.out)
	if err != nil {
		return in, err
	}
	if content != "" {
		in.Content = content
	}

	var curDate string
	if cur.EventDate != nil {
		curDate = cur.EventDate.Format("2006-01-02")
	}
	date, err := getSimpleText(a.reader, withCurrent("Event date YYYY-MM-DD (optional)", curDate), a.out)
	if err != nil {
		return in, err
	}
	if date != "" {
		d, err := models.ParseDate(date)
		if err != nil {
			return in, err
		}
		in.EventDate = d
	}

	in.Notification = confirm(a.reader, "Remind me on that date?", a.out)
	return in, nil
}

func withCurrent(prompt, current string) string {
	if current == "" {
		return prompt
	}
	return fmt.Sprintf("%s [%s]", prompt, current)
}
