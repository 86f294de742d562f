package sheets

import (
	"context"

	"obra/internal/core"
)

// Ports for outbound ledger-mirror adapters.
type (
	// LedgerWriter mirrors a transaction into the external ledger. Upsert
	// is keyed by transaction id so replays and re-edits converge on one
	// row.
	LedgerWriter interface {
		Upsert(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// LedgerDeleter removes a transaction's row from the external ledger.
	// Deleting an id that was never mirrored is not an error.
	LedgerDeleter interface {
		Delete(ctx context.Context, transactionID int64) error
	}
)
