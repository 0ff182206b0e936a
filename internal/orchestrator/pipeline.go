package orchestrator

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/atadzan/calc-operation-api/internal/apperr"
	"github.com/atadzan/calc-operation-api/internal/constants"
	"github.com/atadzan/calc-operation-api/internal/metrics"
	"github.com/atadzan/calc-operation-api/internal/models"
)

type Pricer interface {
	Price(ctx context.Context, expression string) (decimal.Decimal, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, expression string) (string, error)
}

// BalanceDebiter charges an account and returns the balance the account service reports afterwards.
type BalanceDebiter interface {
	Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, token string) (decimal.Decimal, error)
}

type RecordStore interface {
	Save(ctx context.Context, record models.OperationRecord) (*models.OperationRecord, error)
	GetTotalCount(ctx context.Context, userID uuid.UUID, query string) (int, error)
	GetPaged(ctx context.Context, userID uuid.UUID, page, pageSize int, query string) ([]models.OperationRecord, error)
	SoftDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (bool, error)
	GetDashboard(ctx context.Context, userID uuid.UUID) (*models.Dashboard, error)
}

type TypeLister interface {
	GetAll(ctx context.Context) ([]models.OperationType, error)
}

type AddOperationRequest struct {
	AccountID  uuid.UUID
	Expression string
	UserID     uuid.UUID
	Token      string
}

// Pipeline prices, evaluates, charges and records operations. Errors from each step
// are returned as they are.
type Pipeline struct {
	pricer       Pricer
	evaluator    Evaluator
	debiter      BalanceDebiter
	store        RecordStore
	types        TypeLister
	annualTarget decimal.Decimal
	log          zerolog.Logger
}

func NewPipeline(
	pricer Pricer,
	evaluator Evaluator,
	debiter BalanceDebiter,
	store RecordStore,
	types TypeLister,
	annualTarget decimal.Decimal,
	log zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		pricer:       pricer,
		evaluator:    evaluator,
		debiter:      debiter,
		store:        store,
		types:        types,
		annualTarget: annualTarget,
		log:          log.With().Str("component", "pipeline").Logger(),
	}
}

// AddOperation runs price, evaluate, debit and save in that order.
// A debit followed by a failed save is not compensated.
func (p *Pipeline) AddOperation(ctx context.Context, req AddOperationRequest) (*models.OperationRecord, error) {
	if req.AccountID == uuid.Nil {
		return nil, apperr.Validation(constants.AccountIDRequired)
	}
	if strings.TrimSpace(req.Expression) == "" {
		return nil, apperr.Validation(constants.ExpressionRequired)
	}

	cost, err := p.pricer.Price(ctx, req.Expression)
	if err != nil {
		metrics.RecordOperation(metrics.OutcomePriceFailed)
		return nil, err
	}

	result, err := p.evaluator.Evaluate(ctx, req.Expression)
	if err != nil {
		metrics.RecordOperation(metrics.OutcomeEvaluateFailed)
		return nil, err
	}

	balance, err := p.debiter.Debit(ctx, req.AccountID, cost, req.Token)
	if err != nil {
		metrics.RecordOperation(metrics.OutcomeDebitFailed)
		return nil, err
	}

	saved, err := p.store.Save(ctx, models.OperationRecord{
		UserID:      req.UserID,
		Cost:        cost,
		UserBalance: balance,
		Expression:  req.Expression,
		Result:      result,
	})
	if err != nil {
		metrics.RecordOperation(metrics.OutcomeSaveFailed)
		p.log.Error().Err(err).Str("user_id", req.UserID.String()).Str("account_id", req.AccountID.String()).
			Str("cost", cost.StringFixed(2)).Msg("account debited but operation record not saved")
		return nil, err
	}
	if saved == nil {
		metrics.RecordOperation(metrics.OutcomeSaveFailed)
		return nil, &apperr.Error{Kind: apperr.KindInternal, Message: constants.OperationNotSaved}
	}

	metrics.RecordOperation(metrics.OutcomeSaved)
	p.log.Info().Str("record_id", saved.ID.String()).Str("user_id", req.UserID.String()).
		Str("cost", cost.StringFixed(2)).Msg("operation saved")
	return saved, nil
}

// GetPagedOperations returns one page of the user's live records plus the matching total.
func (p *Pipeline) GetPagedOperations(ctx context.Context, userID uuid.UUID, page, pageSize int, query string) (*models.PagedOperations, error) {
	if page < 0 {
		page = constants.DefaultPage
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}

	total, err := p.store.GetTotalCount(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	records, err := p.store.GetPaged(ctx, userID, page, pageSize, query)
	if err != nil {
		return nil, err
	}
	return &models.PagedOperations{Total: total, Records: records}, nil
}

func (p *Pipeline) SoftDeleteOperations(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return false, apperr.Validation(constants.ListOfIDsRequired)
	}
	return p.store.SoftDelete(ctx, userID, ids)
}

func (p *Pipeline) GetDashboard(ctx context.Context, userID uuid.UUID) (*models.Dashboard, error) {
	dashboard, err := p.store.GetDashboard(ctx, userID)
	if err != nil {
		return nil, err
	}
	dashboard.AnnualTarget = p.annualTarget
	return dashboard, nil
}

func (p *Pipeline) ListOperationTypes(ctx context.Context) ([]models.OperationType, error) {
	types, err := p.types.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, apperr.NotFound(constants.NoOperationsFound)
	}
	return types, nil
}
