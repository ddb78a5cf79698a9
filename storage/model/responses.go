package model

// Lookup is the result of a Get
type Lookup struct {
	Value string
	OK    bool
}

// Mutation is the result of a Set or Delete
type Mutation struct {
	Previous string
	Existed  bool
	Err      error
}

// Transition is the result of a BeginTransaction,
// CommitTransaction or RollbackTransaction
type Transition struct {
	Depth int
	Err   error
}
