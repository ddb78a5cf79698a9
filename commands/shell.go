package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jrife/txnkv/storage"
	"github.com/jrife/txnkv/utils/log"
	"go.uber.org/zap"
)

// DefaultPrompt is printed before each line is read if
// Shell.Prompt is empty
const DefaultPrompt = "> "

// Greeting is printed when a shell starts
const Greeting = "Welcome to an interactive interface to a transactional key value store.\nType HELP to get a list of all supported commands."

// Shell reads commands from In line by line, executes them and
// writes their output to Out
type Shell struct {
	In     io.Reader
	Out    io.Writer
	Prompt string
}

// Run executes commands against s until EXIT is executed, In is
// exhausted or ctx is done. Parse and storage errors are written
// to Out and do not stop the shell. Lines are read in a separate
// goroutine so that Run returns as soon as ctx is done, even while
// waiting for input. That goroutine exits once its pending read
// from In returns.
func (shell *Shell) Run(ctx context.Context, s storage.Storage) error {
	logger := log.FromContext(ctx)
	prompt := shell.Prompt

	if prompt == "" {
		prompt = DefaultPrompt
	}

	if _, err := fmt.Fprintln(shell.Out, Greeting); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(shell.In, done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := fmt.Fprint(shell.Out, prompt); err != nil {
			return err
		}

		var line string
		var ok bool

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
		}

		if !ok {
			return <-readErr
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		command, err := Parse(line)

		if err != nil {
			logger.Debug("could not parse command", zap.String("line", line), zap.Error(err))

			if _, err := fmt.Fprintln(shell.Out, err.Error()); err != nil {
				return err
			}

			continue
		}

		output, err := command.Execute(ctx, s)

		if err != nil {
			logger.Debug("command failed", zap.Stringer("command", command), zap.Error(err))
			output = err.Error()
		} else {
			logger.Debug("command executed", zap.Stringer("command", command))
		}

		if output != "" {
			if _, err := fmt.Fprintln(shell.Out, output); err != nil {
				return err
			}
		}

		if command.Name() == Exit {
			return nil
		}
	}
}

// readLines sends each line of r on lines until r is exhausted or
// done is closed. Once r is exhausted the read error, if any, is
// sent on errs before lines is closed.
func readLines(r io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)

		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}

		errs <- scanner.Err()
	}()

	return lines, errs
}
