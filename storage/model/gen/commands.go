package gen

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jrife/txnkv/storage"
	"github.com/jrife/txnkv/storage/model"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/commands"
)

func storageOf(sut commands.SystemUnderTest) storage.Storage {
	return sut.(storage.Storage)
}

func modelOf(state commands.State) *model.StorageModel {
	return state.(*model.StorageModel)
}

// compare checks the result of a command against the response
// the model recorded for it
func compare(state commands.State, result commands.Result) *gopter.PropResult {
	diff := cmp.Diff(modelOf(state).LastResponse(), result, cmpopts.EquateErrors())

	if diff != "" {
		fmt.Printf("Diff: %s\n", diff)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}

	return &gopter.PropResult{Status: gopter.PropTrue}
}

type getCommand struct {
	key string
}

func (command getCommand) Run(sut commands.SystemUnderTest) commands.Result {
	value, ok := storageOf(sut).Get(command.key)
	return model.Lookup{Value: value, OK: ok}
}

func (command getCommand) NextState(state commands.State) commands.State {
	modelOf(state).Get(command.key)
	return state
}

func (command getCommand) PreCondition(state commands.State) bool {
	return true
}

func (command getCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return compare(state, result)
}

func (command getCommand) String() string {
	return fmt.Sprintf("Get(%q)", command.key)
}

type countCommand struct {
	value string
}

func (command countCommand) Run(sut commands.SystemUnderTest) commands.Result {
	return storageOf(sut).Count(command.value)
}

func (command countCommand) NextState(state commands.State) commands.State {
	modelOf(state).Count(command.value)
	return state
}

func (command countCommand) PreCondition(state commands.State) bool {
	return true
}

func (command countCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return compare(state, result)
}

func (command countCommand) String() string {
	return fmt.Sprintf("Count(%q)", command.value)
}

type setCommand struct {
	key   string
	value string
}

func (command setCommand) Run(sut commands.SystemUnderTest) commands.Result {
	previous, existed, err := storageOf(sut).Set(command.key, command.value)
	return model.Mutation{Previous: previous, Existed: existed, Err: err}
}

func (command setCommand) NextState(state commands.State) commands.State {
	modelOf(state).Set(command.key, command.value)
	return state
}

func (command setCommand) PreCondition(state commands.State) bool {
	return true
}

func (command setCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return compare(state, result)
}

func (command setCommand) String() string {
	return fmt.Sprintf("Set(%q, %q)", command.key, command.value)
}

type deleteCommand struct {
	key string
}

func (command deleteCommand) Run(sut commands.SystemUnderTest) commands.Result {
	previous, existed, err := storageOf(sut).Delete(command.key)
	return model.Mutation{Previous: previous, Existed: existed, Err: err}
}

func (command deleteCommand) NextState(state commands.State) commands.State {
	modelOf(state).Delete(command.key)
	return state
}

func (command deleteCommand) PreCondition(state commands.State) bool {
	return true
}

func (command deleteCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return compare(state, result)
}

func (command deleteCommand) String() string {
	return fmt.Sprintf("Delete(%q)", command.key)
}

// transition is one of begin, commit or rollback
type transition int

const (
	begin transition = iota
	commit
	rollback
)

type transitionCommand struct {
	transition transition
}

func (command transitionCommand) Run(sut commands.SystemUnderTest) commands.Result {
	var depth int
	var err error

	switch command.transition {
	case begin:
		depth, err = storageOf(sut).BeginTransaction()
	case commit:
		depth, err = storageOf(sut).CommitTransaction()
	case rollback:
		depth, err = storageOf(sut).RollbackTransaction()
	}

	return model.Transition{Depth: depth, Err: err}
}

func (command transitionCommand) NextState(state commands.State) commands.State {
	switch command.transition {
	case begin:
		modelOf(state).BeginTransaction()
	case commit:
		modelOf(state).CommitTransaction()
	case rollback:
		modelOf(state).RollbackTransaction()
	}

	return state
}

func (command transitionCommand) PreCondition(state commands.State) bool {
	return true
}

func (command transitionCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return compare(state, result)
}

func (command transitionCommand) String() string {
	switch command.transition {
	case begin:
		return "BeginTransaction()"
	case commit:
		return "CommitTransaction()"
	default:
		return "RollbackTransaction()"
	}
}

// dataCommand checks every key the generators can produce
// against the model
type dataCommand struct {
	keys []string
}

func (command dataCommand) Run(sut commands.SystemUnderTest) commands.Result {
	data := map[string]string{}

	for _, key := range command.keys {
		if value, ok := storageOf(sut).Get(key); ok {
			data[key] = value
		}
	}

	return data
}

func (command dataCommand) NextState(state commands.State) commands.State {
	return state
}

func (command dataCommand) PreCondition(state commands.State) bool {
	return true
}

func (command dataCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	diff := cmp.Diff(modelOf(state).Data(), result)

	if diff != "" {
		fmt.Printf("Diff: %s\n", diff)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}

	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (command dataCommand) String() string {
	return "Data()"
}

