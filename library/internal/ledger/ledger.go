// Package ledger owns the per-title copy counters.
//
// Every change to available_copies goes through TryHold or Release. Both are
// serialized per title and never block callers working on other titles.
package ledger

import (
	"context"

	"github.com/Astemirdum/library-lending/library/internal/model"
)

type Ledger interface {
	// TryHold takes one copy of the title or fails with errs.ErrOutOfCopies. It never queues.
	TryHold(ctx context.Context, titleUid string) (model.HoldToken, error)
	// Release gives one copy back. A release with no matching hold fails with errs.ErrLedgerInvariant.
	Release(ctx context.Context, titleUid string) error
	Title(ctx context.Context, titleUid string) (model.Title, error)
	// UpsertTitle sets total_copies and shifts available_copies by the same delta.
	UpsertTitle(ctx context.Context, title model.Title) (model.Title, error)
}
