package remote

import "context"

// Service is the contract of the hosted data service consumed by the
// mutation queue. Implementations must be safe for concurrent use.
//
// All three operations are keyed by table name. Update and Delete select
// the affected row by its primary key value.
type Service interface {
	// Insert submits row as a new record in table.
	Insert(ctx context.Context, table string, row map[string]any) error

	// Update applies changes as a partial update to the row in table
	// whose primary key equals id.
	Update(ctx context.Context, table string, id any, changes map[string]any) error

	// Delete removes the row in table whose primary key equals id.
	Delete(ctx context.Context, table string, id any) error
}
