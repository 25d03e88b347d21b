package ledger

import "context"

// AccountRef is an opaque handle to an externally owned ledger account.
// The swap core borrows refs for the duration of one call and never owns them.
type AccountRef string

// AssetID identifies the underlying asset type of an account.
type AssetID string

// Ledger exposes the two read primitives the swap core needs from the
// external asset ledger: a balance read and an asset-type lookup.
type Ledger interface {
	Balance(ctx context.Context, ref AccountRef) (uint64, error)
	AssetOf(ctx context.Context, ref AccountRef) (AssetID, error)
}

// Host provides the all-or-nothing execution unit the transitive swap runs
// inside. If fn returns an error, every ledger effect made within the unit is
// rolled back.
type Host interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}
