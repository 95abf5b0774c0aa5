package ledger

import (
	"context"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/pkg/postgres"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const titlesTableName = `titles`

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Postgres keeps the counters in the titles table. The conditional update
// takes the row lock, so concurrent holds on one title are serialized by the
// database and run inside whatever transaction ctx carries.
type Postgres struct {
	db    *pgxpool.Pool
	clock clockwork.Clock
	log   *zap.Logger
}

var _ Ledger = (*Postgres)(nil)

func NewPostgres(db *pgxpool.Pool, clock clockwork.Clock, log *zap.Logger) *Postgres {
	return &Postgres{
		db:    db,
		clock: clock,
		log:   log.Named("ledger"),
	}
}

func (l *Postgres) TryHold(ctx context.Context, titleUid string) (model.HoldToken, error) {
	const q = `
update titles
    set available_copies = available_copies - 1, updated_at = @now
where title_uid = @title_uid and available_copies > 0
returning available_copies`
	now := l.clock.Now().UTC()
	args := pgx.NamedArgs{"title_uid": titleUid, "now": now}

	var available int
	err := postgres.Conn(ctx, l.db).QueryRow(ctx, q, args).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err := l.exists(ctx, titleUid); err != nil {
				return model.HoldToken{}, err
			}
			return model.HoldToken{}, errors.Wrapf(errs.ErrOutOfCopies, "title %s", titleUid)
		}
		return model.HoldToken{}, errors.Wrap(err, "TryHold")
	}
	l.log.Debug("hold", zap.String("title_uid", titleUid), zap.Int("available", available))
	return model.HoldToken{
		HoldUid:  uuid.NewString(),
		TitleUid: titleUid,
		HeldAt:   now,
	}, nil
}

func (l *Postgres) Release(ctx context.Context, titleUid string) error {
	const q = `
update titles
    set available_copies = available_copies + 1, updated_at = @now
where title_uid = @title_uid and available_copies < total_copies
returning available_copies`
	args := pgx.NamedArgs{"title_uid": titleUid, "now": l.clock.Now().UTC()}

	var available int
	err := postgres.Conn(ctx, l.db).QueryRow(ctx, q, args).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err := l.exists(ctx, titleUid); err != nil {
				return err
			}
			l.log.Error("release without matching hold",
				zap.String("title_uid", titleUid), zap.Stack("stack"))
			return errors.Wrapf(errs.ErrLedgerInvariant, "release on title %s with no copies in use", titleUid)
		}
		return errors.Wrap(err, "Release")
	}
	l.log.Debug("release", zap.String("title_uid", titleUid), zap.Int("available", available))
	return nil
}

func (l *Postgres) exists(ctx context.Context, titleUid string) error {
	var one int
	err := postgres.Conn(ctx, l.db).
		QueryRow(ctx, `select 1 from titles where title_uid = $1`, titleUid).
		Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.Wrapf(errs.ErrNotFound, "title %s", titleUid)
		}
		return errors.Wrap(err, "title exists")
	}
	return nil
}

func (l *Postgres) Title(ctx context.Context, titleUid string) (model.Title, error) {
	query, args, err := qb.Select("title_uid", "name", "total_copies", "available_copies", "updated_at").
		From(titlesTableName).
		Where(sq.Eq{"title_uid": titleUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Title{}, err
	}

	rows, err := postgres.Conn(ctx, l.db).Query(ctx, query, args...)
	if err != nil {
		return model.Title{}, errors.Wrap(err, "Title")
	}
	defer rows.Close()

	title, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Title])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Title{}, errors.Wrapf(errs.ErrNotFound, "title %s", titleUid)
		}
		return model.Title{}, errors.Wrap(err, "Title")
	}
	return title, nil
}

func (l *Postgres) UpsertTitle(ctx context.Context, title model.Title) (model.Title, error) {
	if title.TitleUid == "" {
		return model.Title{}, errors.Wrap(errs.ErrValidation, "titleUid is required")
	}
	if title.TotalCopies < 0 {
		return model.Title{}, errors.Wrap(errs.ErrValidation, "totalCopies must not be negative")
	}
	const q = `
insert into titles (title_uid, name, total_copies, available_copies, updated_at)
values (@title_uid, @name, @total_copies, @total_copies, @now)
on conflict (title_uid) do update
    set name = excluded.name,
        total_copies = excluded.total_copies,
        available_copies = titles.available_copies + (excluded.total_copies - titles.total_copies),
        updated_at = excluded.updated_at
returning title_uid, name, total_copies, available_copies, updated_at`
	args := pgx.NamedArgs{
		"title_uid":    title.TitleUid,
		"name":         title.Name,
		"total_copies": title.TotalCopies,
		"now":          l.clock.Now().UTC(),
	}

	rows, err := postgres.Conn(ctx, l.db).Query(ctx, q, args)
	if err != nil {
		return model.Title{}, errors.Wrap(err, "UpsertTitle")
	}
	defer rows.Close()

	out, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Title])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return model.Title{}, errors.Wrapf(errs.ErrValidation,
				"totalCopies %d is below copies in use", title.TotalCopies)
		}
		return model.Title{}, errors.Wrap(err, "UpsertTitle")
	}
	return out, nil
}
