package storage_test

import (
	"testing"

	"github.com/jrife/txnkv/storage"
	"github.com/jrife/txnkv/storage/model"
	command_gen "github.com/jrife/txnkv/storage/model/gen"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/commands"
)

func TestStorageAgainstModel(t *testing.T) {
	testCases := map[string]struct {
		capacity int
		maxDepth int
	}{
		"tight":   {capacity: 2, maxDepth: 2},
		"shallow": {capacity: 8, maxDepth: 1},
		"deep":    {capacity: 5, maxDepth: 6},
		"roomy":   {capacity: 1000, maxDepth: 100},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			testStorageAgainstModel(t, testCase.capacity, testCase.maxDepth, func(s storage.Storage) storage.Storage {
				return s
			})
		})

		t.Run(name+"-synchronized", func(t *testing.T) {
			testStorageAgainstModel(t, testCase.capacity, testCase.maxDepth, func(s storage.Storage) storage.Storage {
				return storage.Synchronized(s).Session()
			})
		})
	}
}

func testStorageAgainstModel(t *testing.T, capacity, maxDepth int, wrap func(storage.Storage) storage.Storage) {
	var cbCommands = &commands.ProtoCommands{
		NewSystemUnderTestFunc: func(initialState commands.State) commands.SystemUnderTest {
			return wrap(newStorage(t, capacity, maxDepth))
		},
		InitialStateGen: gopter.CombineGens().Map(func([]interface{}) *model.StorageModel {
			return model.NewStorageModel(capacity, maxDepth)
		}),
		InitialPreConditionFunc: func(state commands.State) bool {
			return true
		},
		GenCommandFunc: func(state commands.State) gopter.Gen {
			return command_gen.Commands(state.(*model.StorageModel))
		},
	}

	parameters := gopter.DefaultTestParametersWithSeed(1234)
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	properties.Property("", commands.Prop(cbCommands))
	properties.TestingRun(t)
}
