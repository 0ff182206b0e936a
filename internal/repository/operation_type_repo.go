package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/atadzan/calc-operation-api/internal/models"
)

// OperationTypeRepository reads the priced operator catalogue.
type OperationTypeRepository interface {
	GetAll(ctx context.Context) ([]models.OperationType, error)
	GetByOperatorCodes(ctx context.Context, codes []string) ([]models.OperationType, error)
}

type operationTypeRepo struct {
	db *sqlx.DB
}

func NewOperationTypeRepository(db *sqlx.DB) OperationTypeRepository {
	return &operationTypeRepo{db: db}
}

const operationTypeColumns = `id, operator_code, description, cost, created_at, updated_at`

func (r *operationTypeRepo) GetAll(ctx context.Context) ([]models.OperationType, error) {
	types := make([]models.OperationType, 0)
	query := `SELECT ` + operationTypeColumns + ` FROM operation_type ORDER BY operator_code`
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("can't list operation types. Err: %w", err)
	}
	return types, nil
}

// GetByOperatorCodes returns the types whose code is in codes. Unknown codes are skipped.
func (r *operationTypeRepo) GetByOperatorCodes(ctx context.Context, codes []string) ([]models.OperationType, error) {
	types := make([]models.OperationType, 0, len(codes))
	if len(codes) == 0 {
		return types, nil
	}

	query, args, err := sqlx.In(`SELECT `+operationTypeColumns+` FROM operation_type WHERE operator_code IN (?)`, codes)
	if err != nil {
		return nil, fmt.Errorf("can't build operation type query. Err: %w", err)
	}
	if err = r.db.SelectContext(ctx, &types, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("can't find operation types. Codes: %v. Err: %w", codes, err)
	}
	return types, nil
}
