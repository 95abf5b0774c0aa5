package repository

import (
	"context"
	"strings"

	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/pkg/postgres"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Repository interface {
	// WithinTx runs fn atomically; repository and ledger calls made with the
	// ctx passed to fn join the same transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateReservation(ctx context.Context, rsv model.Reservation) (model.Reservation, error)
	GetReservation(ctx context.Context, reservationUid string) (model.Reservation, error)
	ListReservations(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
	// UpdateReservation stores rsv only if the stored status still equals from.
	UpdateReservation(ctx context.Context, rsv model.Reservation, from model.ReservationStatus) error

	CreateLoan(ctx context.Context, loan model.Loan) (model.Loan, error)
	GetLoan(ctx context.Context, loanUid string) (model.Loan, error)
	ListLoans(ctx context.Context, filter model.LoanFilter) ([]model.Loan, error)
	// UpdateLoan stores loan only if the stored status still equals from.
	UpdateLoan(ctx context.Context, loan model.Loan, from model.LoanStatus) error

	CountActiveHolds(ctx context.Context, titleUid string) (int, error)
}

// ErrStale is returned by the compare-and-set updates when the stored status moved.
var ErrStale = errors.Wrap(errs.ErrInvalidTransition, "status changed concurrently")

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	reservationTableName = `reservations`
	loanTableName        = `loans`
)

var (
	qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	reservationColumns = []string{
		"reservation_uid", "title_uid", "patron", "reserved_at", "requested_date",
		"expiration_date", "status", "decline_reason", "hold_uid", "updated_at",
	}
	loanColumns = []string{
		"loan_uid", "title_uid", "patron", "reservation_uid", "hold_uid", "borrowed_at",
		"due_date", "returned_at", "status", "late_fee", "extensions", "updated_at",
	}
)

func (r *repository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.WithinTx(ctx, r.db, fn)
}

func (r *repository) CreateReservation(ctx context.Context, rsv model.Reservation) (model.Reservation, error) {
	q, args, err := qb.Insert(reservationTableName).
		Columns(reservationColumns...).
		Values(rsv.ReservationUid, rsv.TitleUid, rsv.Patron, rsv.ReservedAt, rsv.RequestedDate,
			rsv.ExpirationDate, rsv.Status, rsv.DeclineReason, rsv.HoldUid, rsv.UpdatedAt).
		Suffix("returning " + strings.Join(reservationColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	rows, err := postgres.Conn(ctx, r.db).Query(ctx, q, args...)
	if err != nil {
		return model.Reservation{}, errors.Wrap(err, "CreateReservation")
	}
	defer rows.Close()

	res, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Reservation])
	if err != nil {
		r.log.Error("CreateReservation", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return model.Reservation{}, mapWriteErr(err, "CreateReservation")
	}
	return res, nil
}

func (r *repository) GetReservation(ctx context.Context, reservationUid string) (model.Reservation, error) {
	q, args, err := qb.Select(reservationColumns...).
		From(reservationTableName).
		Where(sq.Eq{"reservation_uid": reservationUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	rows, err := postgres.Conn(ctx, r.db).Query(ctx, q, args...)
	if err != nil {
		return model.Reservation{}, errors.Wrap(err, "GetReservation")
	}
	defer rows.Close()

	res, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Reservation])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Reservation{}, errors.Wrapf(errs.ErrNotFound, "reservation %s", reservationUid)
		}
		return model.Reservation{}, errors.Wrap(err, "GetReservation")
	}
	return res, nil
}

func (r *repository) ListReservations(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	sb := qb.Select(reservationColumns...).
		From(reservationTableName).
		OrderBy("reserved_at")
	if filter.Patron != "" {
		sb = sb.Where(sq.Eq{"patron": filter.Patron})
	}
	if filter.TitleUid != "" {
		sb = sb.Where(sq.Eq{"title_uid": filter.TitleUid})
	}
	if len(filter.Statuses) > 0 {
		sb = sb.Where(sq.Eq{"status": filter.Statuses})
	}
	if filter.ExpiresBefore != nil {
		sb = sb.Where(sq.Lt{"expiration_date": *filter.ExpiresBefore})
	}
	q, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListReservations", zap.String("query", q), zap.Any("args", args))

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListReservations")
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Reservation])
	if err != nil {
		return nil, errors.Wrap(err, "pgx.CollectRows")
	}
	return items, nil
}

func (r *repository) UpdateReservation(ctx context.Context, rsv model.Reservation, from model.ReservationStatus) error {
	q, args, err := qb.Update(reservationTableName).
		Set("status", rsv.Status).
		Set("decline_reason", rsv.DeclineReason).
		Set("hold_uid", rsv.HoldUid).
		Set("expiration_date", rsv.ExpirationDate).
		Set("updated_at", rsv.UpdatedAt).
		Where(sq.Eq{"reservation_uid": rsv.ReservationUid, "status": from}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "UpdateReservation")
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetReservation(ctx, rsv.ReservationUid); err != nil {
			return err
		}
		return ErrStale
	}
	return nil
}

func (r *repository) CreateLoan(ctx context.Context, loan model.Loan) (model.Loan, error) {
	q, args, err := qb.Insert(loanTableName).
		Columns(loanColumns...).
		Values(loan.LoanUid, loan.TitleUid, loan.Patron, loan.ReservationUid, loan.HoldUid, loan.BorrowedAt,
			loan.DueDate, loan.ReturnedAt, loan.Status, loan.LateFee, loan.Extensions, loan.UpdatedAt).
		Suffix("returning " + strings.Join(loanColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Loan{}, err
	}
	rows, err := postgres.Conn(ctx, r.db).Query(ctx, q, args...)
	if err != nil {
		return model.Loan{}, errors.Wrap(err, "CreateLoan")
	}
	defer rows.Close()

	res, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Loan])
	if err != nil {
		r.log.Error("CreateLoan", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return model.Loan{}, mapWriteErr(err, "CreateLoan")
	}
	return res, nil
}

func (r *repository) GetLoan(ctx context.Context, loanUid string) (model.Loan, error) {
	q, args, err := qb.Select(loanColumns...).
		From(loanTableName).
		Where(sq.Eq{"loan_uid": loanUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Loan{}, err
	}
	rows, err := postgres.Conn(ctx, r.db).Query(ctx, q, args...)
	if err != nil {
		return model.Loan{}, errors.Wrap(err, "GetLoan")
	}
	defer rows.Close()

	loan, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Loan])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Loan{}, errors.Wrapf(errs.ErrNotFound, "loan %s", loanUid)
		}
		return model.Loan{}, errors.Wrap(err, "GetLoan")
	}
	return loan, nil
}

func (r *repository) ListLoans(ctx context.Context, filter model.LoanFilter) ([]model.Loan, error) {
	sb := qb.Select(loanColumns...).
		From(loanTableName).
		OrderBy("borrowed_at")
	if filter.Patron != "" {
		sb = sb.Where(sq.Eq{"patron": filter.Patron})
	}
	if filter.TitleUid != "" {
		sb = sb.Where(sq.Eq{"title_uid": filter.TitleUid})
	}
	if len(filter.Statuses) > 0 {
		sb = sb.Where(sq.Eq{"status": filter.Statuses})
	}
	if filter.DueBefore != nil {
		sb = sb.Where(sq.Lt{"due_date": *filter.DueBefore})
	}
	q, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListLoans", zap.String("query", q), zap.Any("args", args))

	rows, err := postgres.Conn(ctx, r.db).Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListLoans")
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Loan])
	if err != nil {
		return nil, errors.Wrap(err, "pgx.CollectRows")
	}
	return items, nil
}

func (r *repository) UpdateLoan(ctx context.Context, loan model.Loan, from model.LoanStatus) error {
	q, args, err := qb.Update(loanTableName).
		Set("status", loan.Status).
		Set("due_date", loan.DueDate).
		Set("returned_at", loan.ReturnedAt).
		Set("late_fee", loan.LateFee).
		Set("extensions", loan.Extensions).
		Set("updated_at", loan.UpdatedAt).
		Where(sq.Eq{"loan_uid": loan.LoanUid, "status": from}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := postgres.Conn(ctx, r.db).Exec(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "UpdateLoan")
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetLoan(ctx, loan.LoanUid); err != nil {
			return err
		}
		return ErrStale
	}
	return nil
}

func (r *repository) CountActiveHolds(ctx context.Context, titleUid string) (int, error) {
	const q = `
select
    (select count(*) from reservations where title_uid = @title_uid and status = @approved) +
    (select count(*) from loans where title_uid = @title_uid and status in (@borrowed, @overdue))`
	args := pgx.NamedArgs{
		"title_uid": titleUid,
		"approved":  model.ReservationApproved,
		"borrowed":  model.LoanBorrowed,
		"overdue":   model.LoanOverdue,
	}
	var count int
	if err := postgres.Conn(ctx, r.db).QueryRow(ctx, q, args).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "CountActiveHolds")
	}
	return count, nil
}

func mapWriteErr(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return errors.Wrap(errs.ErrAlreadyExists, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return errors.Wrap(errs.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return errors.Wrap(err, op)
}
