package port

import "context"

type CollectionRepository interface {
	// LoadCollection returns the raw elements stored under name. A collection
	// that does not exist yields an empty slice and no error.
	LoadCollection(ctx context.Context, name string) ([]any, error)

	// SaveCollection replaces the collection stored under name
	SaveCollection(ctx context.Context, name string, elems []any) error
}
