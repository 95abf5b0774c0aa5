// Package events carries lending notifications and audit records out of the service.
package events

import (
	"context"

	"github.com/Astemirdum/library-lending/library/internal/model"
	"go.uber.org/multierr"
)

type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

type Auditor interface {
	Audit(ctx context.Context, rec model.AuditRecord) error
}

// Publisher is both sinks at once.
type Publisher interface {
	Notifier
	Auditor
}

// Fanout sends every event to all publishers and joins their errors.
type Fanout []Publisher

var _ Publisher = Fanout(nil)

func (f Fanout) Notify(ctx context.Context, n model.Notification) error {
	var err error
	for _, p := range f {
		err = multierr.Append(err, p.Notify(ctx, n))
	}
	return err
}

func (f Fanout) Audit(ctx context.Context, rec model.AuditRecord) error {
	var err error
	for _, p := range f {
		err = multierr.Append(err, p.Audit(ctx, rec))
	}
	return err
}
