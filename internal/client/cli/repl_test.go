package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/common"
	"github.com/stretchr/testify/assert"
)

// capturePrintln swaps printlnFn for a recorder.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesWithArgs(t *testing.T) {
	capturePrintln(t)

	var calls []string
	record := func(name string) command {
		return command{run: func(_ context.Context, args []string) error {
			calls = append(calls, name+":"+strings.Join(args, ","))
			return nil
		}}
	}
	cmds := map[string]command{
		"search": record("search"),
		"memos":  record("memos"),
		"exit":   {run: func(context.Context, []string) error { return errExit }},
	}

	input := bufio.NewReader(strings.NewReader("search lease deposit\n\n   \nmemos\nexit\nmemos\n"))
	runREPL(context.Background(), cmds, func() string { return "" }, input)

	assert.Equal(t, []string{"search:lease,deposit", "memos:"}, calls)
}

func TestRunREPL_ErrorsPrintedAndLoopContinues(t *testing.T) {
	lines := capturePrintln(t)

	n := 0
	cmds := map[string]command{
		"fail": {run: func(context.Context, []string) error {
			n++
			return fmt.Errorf("call: %w", client.ErrUnavailable)
		}},
	}

	input := bufio.NewReader(strings.NewReader("fail\nbogus\nfail"))
	runREPL(context.Background(), cmds, func() string { return "(nick online)" }, input)

	assert.Equal(t, 2, n, "last line without newline still runs")
	assert.Contains(t, *lines, "Error: "+common.MessageConnectionFailed)
	assert.Contains(t, *lines, "Unknown command: bogus (type 'help')")
	assert.Contains(t, *lines, "lawdesk (nick online)>")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	lines := capturePrintln(t)

	runREPL(context.Background(), map[string]command{}, func() string { return "" }, bufio.NewReader(strings.NewReader("")))

	assert.Len(t, *lines, 1, "only the prompt is printed")
}
