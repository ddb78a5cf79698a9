// Package commands implements the line-oriented command language
// of the interactive shell
package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jrife/txnkv/storage"
)

var (
	// ErrEmptyCommand is returned by Parse when a line has no words
	ErrEmptyCommand = errors.New("empty command")
	// ErrUnknownCommand is returned by Parse when the first word of
	// a line does not name a command
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidArguments is returned by Parse when a command is
	// given the wrong number of arguments
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Command names
const (
	Set      = "SET"
	Get      = "GET"
	Delete   = "DELETE"
	Count    = "COUNT"
	Begin    = "BEGIN"
	Commit   = "COMMIT"
	Rollback = "ROLLBACK"
	Help     = "HELP"
	Exit     = "EXIT"
)

type definition struct {
	name        string
	usage       string
	description string
	arity       int
	execute     func(s storage.Storage, args []string) (string, error)
}

// definitions is in the order HELP lists them
var definitions []*definition

// HELP lists definitions, so they are assigned here rather than
// in the declaration.
func init() {
	definitions = []*definition{
		{
			name:        Set,
			usage:       "SET <key> <value>",
			description: "Store the value for key.",
			arity:       2,
			execute: func(s storage.Storage, args []string) (string, error) {
				_, _, err := s.Set(args[0], args[1])

				return "", err
			},
		},
		{
			name:        Get,
			usage:       "GET <key>",
			description: "Return the current value for key.",
			arity:       1,
			execute: func(s storage.Storage, args []string) (string, error) {
				value, ok := s.Get(args[0])

				if !ok {
					return "key not set", nil
				}

				return value, nil
			},
		},
		{
			name:        Delete,
			usage:       "DELETE <key>",
			description: "Remove the entry for key.",
			arity:       1,
			execute: func(s storage.Storage, args []string) (string, error) {
				previous, existed, err := s.Delete(args[0])

				if err != nil {
					return "", err
				}

				if !existed {
					return fmt.Sprintf("The key '%s' is not found in the storage.", args[0]), nil
				}

				return fmt.Sprintf("The key '%s' with value '%s' has been removed.", args[0], previous), nil
			},
		},
		{
			name:        Count,
			usage:       "COUNT <value>",
			description: "Return the number of keys that have the given value.",
			arity:       1,
			execute: func(s storage.Storage, args []string) (string, error) {
				return strconv.Itoa(s.Count(args[0])), nil
			},
		},
		{
			name:        Begin,
			usage:       "BEGIN",
			description: "Start a new transaction.",
			execute: func(s storage.Storage, args []string) (string, error) {
				_, err := s.BeginTransaction()

				return "", err
			},
		},
		{
			name:        Commit,
			usage:       "COMMIT",
			description: "Complete the current transaction.",
			execute: func(s storage.Storage, args []string) (string, error) {
				depth, err := s.CommitTransaction()

				if err != nil {
					return "", err
				}

				return fmt.Sprintf("Transaction committed successfully. %d transaction(s) are pending", depth), nil
			},
		},
		{
			name:        Rollback,
			usage:       "ROLLBACK",
			description: "Revert to state prior to BEGIN call.",
			execute: func(s storage.Storage, args []string) (string, error) {
				depth, err := s.RollbackTransaction()

				if err != nil {
					return "", err
				}

				return fmt.Sprintf("Transaction reverted successfully. %d transaction(s) are pending", depth), nil
			},
		},
		{
			name:        Help,
			usage:       "HELP",
			description: "Print all available commands.",
			execute: func(s storage.Storage, args []string) (string, error) {
				return Usage(), nil
			},
		},
		{
			name:        Exit,
			usage:       "EXIT",
			description: "Say BYE! and exit. All data in the storage will be lost.",
			execute: func(s storage.Storage, args []string) (string, error) {
				return "BYE!", nil
			},
		},
	}
}

func lookup(name string) (*definition, bool) {
	for _, definition := range definitions {
		if definition.name == name {
			return definition, true
		}
	}

	return nil, false
}

// Usage returns one line per command describing its arguments
// and what it does
func Usage() string {
	lines := make([]string, 0, len(definitions))

	for _, definition := range definitions {
		lines = append(lines, definition.usage+" - "+definition.description)
	}

	return strings.Join(lines, "\n")
}

// Command is a parsed command line ready to be executed
type Command struct {
	definition *definition
	args       []string
}

// Parse parses a command line. Words are separated by any amount of
// white space and the command name is matched case-insensitively.
func Parse(line string) (Command, error) {
	words := strings.Fields(line)

	if len(words) == 0 {
		return Command{}, ErrEmptyCommand
	}

	definition, ok := lookup(strings.ToUpper(words[0]))

	if !ok {
		return Command{}, fmt.Errorf("%w \"%s\". Type HELP to get a list of all supported commands.", ErrUnknownCommand, words[0])
	}

	args := words[1:]

	if len(args) != definition.arity {
		return Command{}, fmt.Errorf("%w: %d parameters found, but %d expected: %s", ErrInvalidArguments, len(args), definition.arity, definition.usage)
	}

	return Command{definition: definition, args: args}, nil
}

// Name returns the upper case name of the command
func (command Command) Name() string {
	if command.definition == nil {
		return ""
	}

	return command.definition.name
}

// Args returns the arguments of the command
func (command Command) Args() []string {
	return command.args
}

// Execute runs the command against s and returns what should be
// shown to the user. Errors returned by s are returned unchanged.
func (command Command) Execute(ctx context.Context, s storage.Storage) (string, error) {
	if command.definition == nil {
		return "", ErrEmptyCommand
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return command.definition.execute(s, command.args)
}

// String returns the command as it would be typed
func (command Command) String() string {
	return strings.Join(append([]string{command.Name()}, command.args...), " ")
}
