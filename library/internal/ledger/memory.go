package ledger

import (
	"context"
	"sync"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type slot struct {
	mu    sync.Mutex
	title model.Title
}

// Memory is an in-process ledger with one mutex per title.
type Memory struct {
	mu     sync.RWMutex
	titles map[string]*slot
	clock  clockwork.Clock
	log    *zap.Logger
}

var _ Ledger = (*Memory)(nil)

func NewMemory(clock clockwork.Clock, log *zap.Logger) *Memory {
	return &Memory{
		titles: make(map[string]*slot),
		clock:  clock,
		log:    log.Named("ledger"),
	}
}

func (l *Memory) slot(titleUid string) (*slot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.titles[titleUid]
	if !ok {
		return nil, errors.Wrapf(errs.ErrNotFound, "title %s", titleUid)
	}
	return s, nil
}

func (l *Memory) TryHold(_ context.Context, titleUid string) (model.HoldToken, error) {
	s, err := l.slot(titleUid)
	if err != nil {
		return model.HoldToken{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.title.AvailableCopies <= 0 {
		return model.HoldToken{}, errors.Wrapf(errs.ErrOutOfCopies, "title %s", titleUid)
	}
	now := l.clock.Now()
	s.title.AvailableCopies--
	s.title.UpdatedAt = now
	return model.HoldToken{
		HoldUid:  uuid.NewString(),
		TitleUid: titleUid,
		HeldAt:   now,
	}, nil
}

func (l *Memory) Release(_ context.Context, titleUid string) error {
	s, err := l.slot(titleUid)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.title.AvailableCopies >= s.title.TotalCopies {
		l.log.Error("release without matching hold",
			zap.String("title_uid", titleUid),
			zap.Int("available", s.title.AvailableCopies),
			zap.Int("total", s.title.TotalCopies),
			zap.Stack("stack"))
		return errors.Wrapf(errs.ErrLedgerInvariant, "release on title %s with no copies in use", titleUid)
	}
	s.title.AvailableCopies++
	s.title.UpdatedAt = l.clock.Now()
	return nil
}

func (l *Memory) Title(_ context.Context, titleUid string) (model.Title, error) {
	s, err := l.slot(titleUid)
	if err != nil {
		return model.Title{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title, nil
}

func (l *Memory) UpsertTitle(_ context.Context, title model.Title) (model.Title, error) {
	if title.TitleUid == "" {
		return model.Title{}, errors.Wrap(errs.ErrValidation, "titleUid is required")
	}
	if title.TotalCopies < 0 {
		return model.Title{}, errors.Wrap(errs.ErrValidation, "totalCopies must not be negative")
	}

	l.mu.Lock()
	s, ok := l.titles[title.TitleUid]
	if !ok {
		s = &slot{title: model.Title{TitleUid: title.TitleUid}}
		l.titles[title.TitleUid] = s
	}
	l.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	inUse := s.title.InUse()
	if title.TotalCopies < inUse {
		return s.title, errors.Wrapf(errs.ErrValidation,
			"totalCopies %d is below %d copies in use", title.TotalCopies, inUse)
	}
	s.title.Name = title.Name
	s.title.TotalCopies = title.TotalCopies
	s.title.AvailableCopies = title.TotalCopies - inUse
	s.title.UpdatedAt = l.clock.Now()
	return s.title, nil
}
