package ledger_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/ledger"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLedger(t *testing.T, titles ...model.Title) *ledger.Memory {
	t.Helper()
	l := ledger.NewMemory(clockwork.NewFakeClock(), zap.NewNop())
	for _, title := range titles {
		_, err := l.UpsertTitle(context.Background(), title)
		require.NoError(t, err)
	}
	return l
}

func TestMemory_TryHold_LastCopyRace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		l := newLedger(t, model.Title{TitleUid: "t1", TotalCopies: 1})

		var (
			wg       sync.WaitGroup
			start    = make(chan struct{})
			ok, fail atomic.Int32
		)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := l.TryHold(ctx, "t1")
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, errs.ErrOutOfCopies):
					fail.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		close(start)
		wg.Wait()

		require.Equal(t, int32(1), ok.Load())
		require.Equal(t, int32(1), fail.Load())
		title, err := l.Title(ctx, "t1")
		require.NoError(t, err)
		require.Equal(t, 0, title.AvailableCopies)
	}
}

func TestMemory_ManyHoldersNeverOversell(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const copies, workers = 7, 64
	l := newLedger(t, model.Title{TitleUid: "t1", TotalCopies: copies})

	var (
		wg   sync.WaitGroup
		held atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.TryHold(ctx, "t1"); err == nil {
				held.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(copies), held.Load())
	title, err := l.Title(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, 0, title.AvailableCopies)
	require.Equal(t, copies, title.AvailableCopies+int(held.Load()))
}

func TestMemory_Release(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := newLedger(t, model.Title{TitleUid: "t1", TotalCopies: 2})

	_, err := l.TryHold(ctx, "t1")
	require.NoError(t, err)
	require.NoError(t, l.Release(ctx, "t1"))

	err = l.Release(ctx, "t1")
	require.ErrorIs(t, err, errs.ErrLedgerInvariant)

	title, err := l.Title(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, 2, title.AvailableCopies)

	require.ErrorIs(t, l.Release(ctx, "missing"), errs.ErrNotFound)
	_, err = l.TryHold(ctx, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMemory_UpsertTitle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := newLedger(t, model.Title{TitleUid: "t1", Name: "Dune", TotalCopies: 3})

	_, err := l.TryHold(ctx, "t1")
	require.NoError(t, err)
	_, err = l.TryHold(ctx, "t1")
	require.NoError(t, err)

	title, err := l.UpsertTitle(ctx, model.Title{TitleUid: "t1", Name: "Dune", TotalCopies: 5})
	require.NoError(t, err)
	require.Equal(t, 5, title.TotalCopies)
	require.Equal(t, 3, title.AvailableCopies)

	_, err = l.UpsertTitle(ctx, model.Title{TitleUid: "t1", TotalCopies: 1})
	require.ErrorIs(t, err, errs.ErrValidation)

	title, err = l.UpsertTitle(ctx, model.Title{TitleUid: "t1", Name: "Dune II", TotalCopies: 2})
	require.NoError(t, err)
	require.Equal(t, 0, title.AvailableCopies)
	require.Equal(t, "Dune II", title.Name)

	_, err = l.UpsertTitle(ctx, model.Title{TitleUid: "", TotalCopies: 1})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestMemory_TitlesDoNotBlockEachOther(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := newLedger(t,
		model.Title{TitleUid: "a", TotalCopies: 100},
		model.Title{TitleUid: "b", TotalCopies: 100},
	)

	var wg sync.WaitGroup
	for _, uid := range []string{"a", "b"} {
		uid := uid
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := l.TryHold(ctx, uid); err != nil {
					t.Errorf("hold %s: %v", uid, err)
					return
				}
				if err := l.Release(ctx, uid); err != nil {
					t.Errorf("release %s: %v", uid, err)
				}
			}()
		}
	}
	wg.Wait()

	for _, uid := range []string{"a", "b"} {
		title, err := l.Title(ctx, uid)
		require.NoError(t, err)
		require.Equal(t, 100, title.AvailableCopies)
	}
}
