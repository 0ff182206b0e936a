package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/atadzan/calc-operation-api/internal/apperr"
	"github.com/atadzan/calc-operation-api/internal/constants"
	"github.com/atadzan/calc-operation-api/internal/metrics"
	"github.com/atadzan/calc-operation-api/internal/models"
	"github.com/atadzan/calc-operation-api/internal/retry"
)

// OperationRecordStore persists operation records and answers the read side.
type OperationRecordStore interface {
	// Save returns nil, nil when the insert affected no rows.
	Save(ctx context.Context, record models.OperationRecord) (*models.OperationRecord, error)
	GetTotalCount(ctx context.Context, userID uuid.UUID, query string) (int, error)
	GetPaged(ctx context.Context, userID uuid.UUID, page, pageSize int, query string) ([]models.OperationRecord, error)
	SoftDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (bool, error)
	GetDashboard(ctx context.Context, userID uuid.UUID) (*models.Dashboard, error)
}

type operationRepo struct {
	db      *sqlx.DB
	dialect dialect
	policy  retry.Policy
	log     zerolog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

// NewOperationRecordStore builds a store for db's driver. Save runs under policy.
func NewOperationRecordStore(db *sqlx.DB, policy retry.Policy, log zerolog.Logger) (OperationRecordStore, error) {
	d, err := dialectFor(db.DriverName())
	if err != nil {
		return nil, err
	}

	r := &operationRepo{
		db:      db,
		dialect: d,
		log:     log.With().Str("component", "operation_record_store").Logger(),
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:   uuid.New,
	}

	if policy.Retryable == nil {
		policy.Retryable = func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}
	}
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		metrics.RecordSaveRetry()
		r.log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("save operation record failed, retrying")
	}
	r.policy = policy

	return r, nil
}

func (r *operationRepo) Save(ctx context.Context, record models.OperationRecord) (*models.OperationRecord, error) {
	return retry.Run(ctx, r.policy, func(ctx context.Context) (*models.OperationRecord, error) {
		rec := record
		rec.ID = r.newID()
		rec.CreatedAt = r.now()

		saved, err := r.insert(ctx, rec)
		if err != nil || !saved {
			return nil, err
		}
		return &rec, nil
	})
}

func (r *operationRepo) insert(ctx context.Context, rec models.OperationRecord) (bool, error) {
	query := r.db.Rebind(`INSERT INTO operation_record (
			id, user_id, cost, user_balance, result, expression, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)

	res, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID,
		rec.Cost.StringFixed(2), rec.UserBalance.StringFixed(2),
		rec.Result, rec.Expression, rec.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("can't save operation record. UserID: %s. Err: %w", rec.UserID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("occurred error while reading affected rows. Err: %w", err)
	}
	return affected > 0, nil
}

// filteredFrom is the FROM/WHERE part shared by the count and page queries.
// It expects the user id followed by the search text six times.
func (r *operationRepo) filteredFrom() string {
	return `
		FROM operation_record r
		WHERE r.deleted_at IS NULL
			AND r.user_id = ?
			AND (
				CAST(? AS TEXT) = ''
				OR LOWER(r.result) LIKE '%' || LOWER(CAST(? AS TEXT)) || '%'
				OR LOWER(r.expression) LIKE '%' || LOWER(CAST(? AS TEXT)) || '%'
				OR CAST(r.cost AS TEXT) LIKE '%' || CAST(? AS TEXT) || '%'
				OR ` + r.dialect.compactDate("r.created_at") + ` LIKE '%' || REPLACE(CAST(? AS TEXT), '/', '') || '%'
				OR ` + r.dialect.fullDate("r.created_at") + ` LIKE '%' || CAST(? AS TEXT) || '%'
			)`
}

func filterArgs(userID uuid.UUID, query string) []any {
	return []any{userID, query, query, query, query, query, query}
}

func (r *operationRepo) GetTotalCount(ctx context.Context, userID uuid.UUID, query string) (int, error) {
	var total int
	sqlQuery := r.db.Rebind(`SELECT COUNT(*)` + r.filteredFrom())
	if err := r.db.GetContext(ctx, &total, sqlQuery, filterArgs(userID, query)...); err != nil {
		return 0, fmt.Errorf("can't count operation records. UserID: %s. Err: %w", userID, err)
	}
	return total, nil
}

func (r *operationRepo) GetPaged(ctx context.Context, userID uuid.UUID, page, pageSize int, query string) ([]models.OperationRecord, error) {
	if page < 0 {
		page = constants.DefaultPage
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}

	sqlQuery := r.db.Rebind(`SELECT r.id, r.user_id, r.cost, r.user_balance, r.result, r.expression, r.created_at` +
		r.filteredFrom() + `
		ORDER BY r.created_at DESC
		LIMIT ? OFFSET ?`)
	args := append(filterArgs(userID, query), pageSize, page*pageSize)

	records := make([]models.OperationRecord, 0, pageSize)
	if err := r.db.SelectContext(ctx, &records, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("can't list operation records. UserID: %s. Err: %w", userID, err)
	}
	return records, nil
}

// SoftDelete marks the user's live records in ids as deleted and reports whether any row changed.
func (r *operationRepo) SoftDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return false, apperr.Validation(constants.ListOfIDsRequired)
	}

	idArgs := make([]string, 0, len(ids))
	for _, id := range ids {
		idArgs = append(idArgs, id.String())
	}

	query, args, err := sqlx.In(`UPDATE operation_record SET deleted_at = ?
		WHERE user_id = ? AND id IN (?) AND deleted_at IS NULL`, r.now(), userID, idArgs)
	if err != nil {
		return false, fmt.Errorf("can't build soft delete query. Err: %w", err)
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("can't delete operation records. UserID: %s. Err: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("occurred error while reading affected rows. Err: %w", err)
	}
	return affected > 0, nil
}

// GetDashboard computes every aggregate in one statement. User operation counts skip
// soft-deleted records; platform figures cover everything ever charged.
func (r *operationRepo) GetDashboard(ctx context.Context, userID uuid.UUID) (*models.Dashboard, error) {
	d := r.dialect
	query := r.db.Rebind(`SELECT
		(SELECT COUNT(*) FROM operation_record
			WHERE user_id = ? AND deleted_at IS NULL) AS total_operations,
		(SELECT COUNT(*) FROM operation_record
			WHERE user_id = ? AND deleted_at IS NULL
			AND ` + d.sameMonth("created_at") + `) AS total_monthly_operations,
		(SELECT ` + d.sumMoney("br.amount") + ` FROM balance_record br
			JOIN bank_account ba ON br.account_id = ba.id
			WHERE br.type = 'credit' AND ba.user_id = ?) AS total_credit,
		(SELECT ` + d.sumMoney("br.amount") + ` FROM balance_record br
			JOIN bank_account ba ON br.account_id = ba.id
			WHERE br.type = 'credit' AND ba.user_id = ?
			AND ` + d.sameYear("br.created_at") + `) AS total_annual_cash_added,
		(SELECT COUNT(*) FROM operation_record) AS total_platform_operations,
		(SELECT ` + d.sumMoney("cost") + ` FROM operation_record) AS total_platform_cash_spent,
		(SELECT ` + d.sumMoney("br.amount") + ` FROM balance_record br
			JOIN bank_account ba ON br.account_id = ba.id
			WHERE br.type = 'credit') AS total_platform_cash_added`)

	dashboard := new(models.Dashboard)
	if err := r.db.GetContext(ctx, dashboard, query, userID, userID, userID, userID); err != nil {
		return nil, fmt.Errorf("can't compute dashboard. UserID: %s. Err: %w", userID, err)
	}

	dashboard.TotalCredit = dashboard.TotalCredit.Round(2)
	dashboard.TotalAnnualCashAdded = dashboard.TotalAnnualCashAdded.Round(2)
	dashboard.TotalPlatformCashSpent = dashboard.TotalPlatformCashSpent.Round(2)
	dashboard.TotalPlatformCashAdded = dashboard.TotalPlatformCashAdded.Round(2)
	return dashboard, nil
}
