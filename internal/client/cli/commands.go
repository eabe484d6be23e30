package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

func (a *App) commands() map[string]command {
	cmds := map[string]command{
		"signup":  {usage: "signup", help: "create an account (email verification first)", run: a.Signup},
		"login":   {usage: "login", help: "log in", run: a.Login},
		"resetpw": {usage: "resetpw", help: "reset a forgotten password", run: a.ResetPassword},
		"logout":  {usage: "logout", help: "log out", auth: true, run: a.Logout},
		"whoami":  {usage: "whoami", help: "show the logged-in user", run: a.Whoami},
		"profile": {usage: "profile [edit]", help: "show or edit your profile", auth: true, run: a.Profile},

		"memos":    {usage: "memos [latest|oldest]", help: "list your memos", auth: true, run: a.Memos},
		"addmemo":  {usage: "addmemo", help: "write a memo", auth: true, run: a.AddMemo},
		"editmemo": {usage: "editmemo <id>", help: "edit a memo", auth: true, run: a.EditMemo},
		"delmemo":  {usage: "delmemo <id>", help: "delete a memo", auth: true, run: a.DeleteMemo},

		"history":      {usage: "history [consultation|precedent]", help: "recently viewed items", auth: true, run: a.History},
		"unview":       {usage: "unview <log id>", help: "remove one history entry", auth: true, run: a.Unview},
		"clearhistory": {usage: "clearhistory", help: "remove all history entries", auth: true, run: a.ClearHistory},

		"search":     {usage: "search <keyword>", help: "search precedents", run: a.Search},
		"consult":    {usage: "consult <keyword>", help: "search consultation cases", run: a.Consult},
		"category":   {usage: "category precedent|consultation <name>", help: "browse by category", run: a.Category},
		"categories": {usage: "categories", help: "list subject categories", run: a.Categories},
		"detail":     {usage: "detail precedent|consultation <id>", help: "open a precedent or consultation", run: a.Detail},

		"research":  {usage: "research legal|tax", help: "generate a review report", run: a.Research},
		"reports":   {usage: "reports", help: "list saved reports and export one", run: a.Reports},
		"templates": {usage: "templates [category]", help: "list document templates", run: a.Templates},
		"videos":    {usage: "videos", help: "latest legal videos", run: a.Videos},
		"chat":      {usage: "chat <category>", help: "ask the category chatbot", run: a.Chat},
		"stats":     {usage: "stats", help: "client request and cache counters", run: a.Stats},

		"exit": {usage: "exit", help: "leave the program", run: a.Exit},
		"quit": {usage: "quit", help: "leave the program", run: a.Exit},
	}
	cmds["help"] = command{usage: "help", help: "show this list", run: func(context.Context, []string) error {
		a.printHelp(cmds)
		return nil
	}}
	return cmds
}

// printHelp lists the commands usable in the current state.
func (a *App) printHelp(cmds map[string]command) {
	loggedIn := a.isLoggedIn()
	names := make([]string, 0, len(cmds))
	for name, c := range cmds {
		if c.auth && !loggedIn {
			continue
		}
		if loggedIn && (name == "signup" || name == "login") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "Available commands:")
	for _, name := range names {
		c := cmds[name]
		fmt.Fprintf(a.out, "  %-42s %s\n", c.usage, c.help)
	}
	if !loggedIn {
		fmt.Fprintln(a.out, "Log in to use memos, history and your profile.")
	}
}

func (a *App) Exit(context.Context, []string) error {
	printlnFn("Bye!")
	return errExit
}

func (a *App) Stats(context.Context, []string) error {
	samples, err := a.metrics.Snapshot()
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Fprintln(a.out, "No requests yet.")
		return nil
	}
	for _, s := range samples {
		fmt.Fprintf(a.out, "%-70s %g\n", s.Name, s.Value)
	}
	return nil
}

func usageError(usage string) error {
	return fmt.Errorf("usage: %s", usage)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
