package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OperationType struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	OperatorCode string          `db:"operator_code" json:"operationCode"`
	Description  string          `db:"description" json:"description"`
	Cost         decimal.Decimal `db:"cost" json:"cost"`
	CreatedAt    time.Time       `db:"created_at" json:"-"`
	UpdatedAt    sql.NullTime    `db:"updated_at" json:"-"`
}

// OperationRecord is the audit row written once per successful operation.
type OperationRecord struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"userId"`
	Cost        decimal.Decimal `db:"cost" json:"cost"`
	UserBalance decimal.Decimal `db:"user_balance" json:"userBalance"`
	Expression  string          `db:"expression" json:"expression"`
	Result      string          `db:"result" json:"result"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	DeletedAt   sql.NullTime    `db:"deleted_at" json:"-"`
}

type PagedOperations struct {
	Total   int
	Records []OperationRecord
}

type Dashboard struct {
	TotalOperations         int64           `db:"total_operations" json:"totalOperations"`
	TotalMonthlyOperations  int64           `db:"total_monthly_operations" json:"totalMonthlyOperations"`
	TotalCredit             decimal.Decimal `db:"total_credit" json:"totalCredit"`
	TotalAnnualCashAdded    decimal.Decimal `db:"total_annual_cash_added" json:"totalAnnualCashAdded"`
	TotalPlatformOperations int64           `db:"total_platform_operations" json:"totalPlatformOperations"`
	TotalPlatformCashSpent  decimal.Decimal `db:"total_platform_cash_spent" json:"totalPlatformCashSpent"`
	TotalPlatformCashAdded  decimal.Decimal `db:"total_platform_cash_added" json:"totalPlatformCashAdded"`
	AnnualTarget            decimal.Decimal `db:"-" json:"annualTarget"`
}
