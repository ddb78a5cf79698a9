package gen

import (
	"github.com/jrife/txnkv/storage/model"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/commands"
	"github.com/leanovate/gopter/gen"
)

// Keys lists every key the generators produce. Keeping the set small
// makes overwrites, deletes of present keys and shared values common.
var Keys = []string{"a", "b", "c", "d"}

// Values lists every value the generators produce. The empty string
// is included since it is a value distinct from an unset key.
var Values = []string{"", "0", "1", "2"}

// Commands returns a generator that generates a range
// of commands for a store modelled by storageModel
func Commands(storageModel *model.StorageModel) gopter.Gen {
	return gen.Weighted([]gen.WeightedGen{
		{Weight: 2, Gen: GetCommand()},
		{Weight: 1, Gen: CountCommand()},
		{Weight: 6, Gen: SetCommand()},
		{Weight: 2, Gen: DeleteCommand()},
		{Weight: 3, Gen: TransitionCommand(storageModel)},
		{Weight: 1, Gen: DataCommand()},
	})
}

// GetCommand returns a generator that generates get commands
func GetCommand() gopter.Gen {
	return gopter.CombineGens(Key()).Map(func(g []interface{}) commands.Command {
		return getCommand{key: g[0].(string)}
	})
}

// CountCommand returns a generator that generates count commands
func CountCommand() gopter.Gen {
	return gopter.CombineGens(Value()).Map(func(g []interface{}) commands.Command {
		return countCommand{value: g[0].(string)}
	})
}

// SetCommand returns a generator that generates set commands
func SetCommand() gopter.Gen {
	return gopter.CombineGens(Key(), Value()).Map(func(g []interface{}) commands.Command {
		return setCommand{key: g[0].(string), value: g[1].(string)}
	})
}

// DeleteCommand returns a generator that generates delete commands
func DeleteCommand() gopter.Gen {
	return gopter.CombineGens(Key()).Map(func(g []interface{}) commands.Command {
		return deleteCommand{key: g[0].(string)}
	})
}

// TransitionCommand returns a generator that generates begin, commit
// and rollback commands. Commits and rollbacks are only generated
// with no transaction open some of the time so that most sequences
// spend their time inside transactions.
func TransitionCommand(storageModel *model.StorageModel) gopter.Gen {
	if storageModel.Depth() == 0 {
		return gen.Weighted([]gen.WeightedGen{
			{Weight: 8, Gen: gen.Const(transitionCommand{transition: begin})},
			{Weight: 1, Gen: gen.Const(transitionCommand{transition: commit})},
			{Weight: 1, Gen: gen.Const(transitionCommand{transition: rollback})},
		}).Map(func(command transitionCommand) commands.Command {
			return command
		})
	}

	return gopter.CombineGens(gen.IntRange(0, 2)).Map(func(g []interface{}) commands.Command {
		return transitionCommand{transition: transition(g[0].(int))}
	})
}

// DataCommand returns a generator that generates commands
// comparing the whole data set with the model
func DataCommand() gopter.Gen {
	return gen.Const(dataCommand{keys: Keys}).Map(func(command dataCommand) commands.Command {
		return command
	})
}

// Key returns a generator that picks one of Keys
func Key() gopter.Gen {
	return gopter.CombineGens(gen.IntRange(0, len(Keys)-1)).Map(func(g []interface{}) string {
		return Keys[g[0].(int)]
	})
}

// Value returns a generator that picks one of Values
func Value() gopter.Gen {
	return gopter.CombineGens(gen.IntRange(0, len(Values)-1)).Map(func(g []interface{}) string {
		return Values[g[0].(int)]
	})
}
