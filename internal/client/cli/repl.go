package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/lawdesk/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// errExit ends the REPL.
var errExit = errors.New("exit")

// command is one REPL verb. run receives the words after the verb.
type command struct {
	usage string
	help  string
	auth  bool
	run   func(ctx context.Context, args []string) error
}

// runREPL reads one line at a time from reader, looks the first word up in
// cmds and runs it. A failing command prints a message and the loop goes
// on; it ends on EOF or when a command returns errExit.
func runREPL(ctx context.Context, cmds map[string]command, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("lawdesk %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		name, args := parts[0], parts[1:]
		cmd, ok := cmds[name]
		if !ok {
			printlnFn("Unknown command:", name, "(type 'help')")
			continue
		}

		if err := cmd.run(ctx, args); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			printlnFn("Error:", services.Describe(err))
		}
	}
}
