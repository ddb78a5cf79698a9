package undo

import "fmt"

// Kind distinguishes the two ways a mutation can be reverted
type Kind int

const (
	// SetBack reinstates the value a key held before the mutation
	SetBack Kind = iota
	// Remove deletes a key that did not exist before the mutation
	Remove
)

func (kind Kind) String() string {
	switch kind {
	case SetBack:
		return "SetBack"
	case Remove:
		return "Remove"
	}

	return fmt.Sprintf("Kind(%d)", int(kind))
}

// Action describes how to undo a single mutation.
// Value is only meaningful for SetBack.
type Action struct {
	Kind  Kind
	Key   string
	Value string
}

// SetBackAction returns an action that restores key to value
func SetBackAction(key, value string) Action {
	return Action{Kind: SetBack, Key: key, Value: value}
}

// RemoveAction returns an action that deletes key
func RemoveAction(key string) Action {
	return Action{Kind: Remove, Key: key}
}

func (action Action) String() string {
	if action.Kind == SetBack {
		return fmt.Sprintf("SetBack(%q, %q)", action.Key, action.Value)
	}

	return fmt.Sprintf("%s(%q)", action.Kind, action.Key)
}
