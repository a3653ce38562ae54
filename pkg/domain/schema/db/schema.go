package db

import "context"

// Interface represents the database schema.
type Interface interface {
	// Upgrade applies every version newer than the one in the database, in a transaction.
	Upgrade(ctx context.Context) error

	// Version returns the current version of the schema in the database.
	// A database without schema is version 0.
	Version(ctx context.Context) (int, error)

	// Context returns a context which is canceled when the schema in database is not latest.
	//
	// Args
	//
	// - ctx: The parent context.
	//
	// Returns
	//
	// - context.Context: canceled, with the cause, when the schema in database
	// is older than the schema repository.
	//
	// - context.CancelFunc: The function to cancel the context.
	Context(ctx context.Context) (context.Context, context.CancelFunc)
}
