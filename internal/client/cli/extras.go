package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lawdesk/internal/client/services"
)

func (a *App) Templates(_ context.Context, args []string) error {
	list, err := services.Templates(joinArgs(args))
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No templates in this category.")
		return nil
	}
	last := ""
	for _, t := range list {
		if t.Category != last {
			fmt.Fprintf(a.out, "%s:\n", t.Category)
			last = t.Category
		}
		fmt.Fprintf(a.out, "  %-45s %s\n", t.Title, t.File)
	}
	return nil
}

func (a *App) Videos(ctx context.Context, _ []string) error {
	listing, err := a.videos.Latest(ctx)
	if err != nil {
		return err
	}
	if listing.Stale {
		fmt.Fprintf(a.out, "(offline copy from %s)\n", listing.FetchedAt.Local().Format("2006-01-02 15:04"))
	}
	if len(listing.Videos) == 0 {
		fmt.Fprintln(a.out, "No videos.")
		return nil
	}
	for _, v := range listing.Videos {
		fmt.Fprintf(a.out, "%s  %s\n    https://www.youtube.com/watch?v=%s\n", v.Channel, v.Title, v.ID)
	}
	return nil
}

// Chat starts a conversation with the chatbot of a category. Each line is
// sent as one question; an empty line ends the conversation.
func (a *App) Chat(ctx context.Context, args []string) error {
	category := joinArgs(args)
	if category == "" {
		return usageError("chat <category> (see 'categories')")
	}
	for {
		msg, err := getSimpleText(a.reader, "Your question (empty to stop)", a.out)
		if err != nil || msg == "" {
			return nil
		}
		reply, err := a.chat.Send(ctx, category, msg)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, reply)
	}
}
