package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/atadzan/calc-operation-api/internal/account"
	"github.com/atadzan/calc-operation-api/internal/apperr"
	"github.com/atadzan/calc-operation-api/internal/calculator"
	"github.com/atadzan/calc-operation-api/internal/constants"
	"github.com/atadzan/calc-operation-api/internal/models"
	"github.com/atadzan/calc-operation-api/internal/pricing"
	"github.com/atadzan/calc-operation-api/pkg/logger"
)

type stubPricer struct {
	cost decimal.Decimal
	err  error
}

func (s stubPricer) Price(context.Context, string) (decimal.Decimal, error) { return s.cost, s.err }

type stubEvaluator struct {
	result string
	err    error
}

func (s stubEvaluator) Evaluate(context.Context, string) (string, error) { return s.result, s.err }

type stubDebiter struct {
	balance decimal.Decimal
	err     error
	amounts []decimal.Decimal
}

func (s *stubDebiter) Debit(_ context.Context, _ uuid.UUID, amount decimal.Decimal, _ string) (decimal.Decimal, error) {
	s.amounts = append(s.amounts, amount)
	return s.balance, s.err
}

type memoryStore struct {
	saved     []models.OperationRecord
	saveErr   error
	notSaved  bool
	deleted   []uuid.UUID
	dashboard models.Dashboard
}

func (m *memoryStore) Save(_ context.Context, r models.OperationRecord) (*models.OperationRecord, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	if m.notSaved {
		return nil, nil
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now().UTC()
	m.saved = append(m.saved, r)
	return &r, nil
}

func (m *memoryStore) GetTotalCount(context.Context, uuid.UUID, string) (int, error) {
	return len(m.saved), nil
}

func (m *memoryStore) GetPaged(_ context.Context, _ uuid.UUID, page, pageSize int, _ string) ([]models.OperationRecord, error) {
	start := page * pageSize
	if start >= len(m.saved) {
		return []models.OperationRecord{}, nil
	}
	end := start + pageSize
	if end > len(m.saved) {
		end = len(m.saved)
	}
	return m.saved[start:end], nil
}

func (m *memoryStore) SoftDelete(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (bool, error) {
	m.deleted = append(m.deleted, ids...)
	return true, nil
}

func (m *memoryStore) GetDashboard(context.Context, uuid.UUID) (*models.Dashboard, error) {
	d := m.dashboard
	return &d, nil
}

type stubTypes struct {
	types []models.OperationType
}

func (s stubTypes) GetAll(context.Context) ([]models.OperationType, error) { return s.types, nil }

func (s stubTypes) GetByOperatorCodes(_ context.Context, codes []string) ([]models.OperationType, error) {
	var out []models.OperationType
	for _, t := range s.types {
		for _, c := range codes {
			if t.OperatorCode == c {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func newStubPipeline(pricer Pricer, eval Evaluator, debiter BalanceDebiter, store RecordStore) *Pipeline {
	return NewPipeline(pricer, eval, debiter, store, stubTypes{}, decimal.NewFromInt(5000), logger.Nop())
}

func validRequest() AddOperationRequest {
	return AddOperationRequest{AccountID: uuid.New(), Expression: "2 + 3", UserID: uuid.New(), Token: "t"}
}

func TestAddOperation_Validation(t *testing.T) {
	debiter := &stubDebiter{}
	p := newStubPipeline(stubPricer{}, stubEvaluator{}, debiter, &memoryStore{})

	req := validRequest()
	req.AccountID = uuid.Nil
	_, err := p.AddOperation(context.Background(), req)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, constants.AccountIDRequired, apperr.MessageOf(err, ""))

	req = validRequest()
	req.Expression = "  "
	_, err = p.AddOperation(context.Background(), req)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, constants.ExpressionRequired, apperr.MessageOf(err, ""))

	assert.Empty(t, debiter.amounts)
}

func TestAddOperation_PropagatesStepErrors(t *testing.T) {
	priceErr := apperr.Validation(constants.InvalidExpression)
	evalErr := apperr.Validation(constants.InvalidExpression)
	debitErr := apperr.Business("Insufficient balance.", nil)
	saveErr := errors.New("database is locked")
	one := decimal.NewFromInt(1)

	tests := []struct {
		name      string
		pricer    stubPricer
		evaluator stubEvaluator
		debiter   *stubDebiter
		store     *memoryStore
		want      error
		debited   int
	}{
		{"pricing", stubPricer{err: priceErr}, stubEvaluator{result: "5"}, &stubDebiter{}, &memoryStore{}, priceErr, 0},
		{"evaluation", stubPricer{cost: one}, stubEvaluator{err: evalErr}, &stubDebiter{}, &memoryStore{}, evalErr, 0},
		{"debit", stubPricer{cost: one}, stubEvaluator{result: "5"}, &stubDebiter{err: debitErr}, &memoryStore{}, debitErr, 1},
		{"save", stubPricer{cost: one}, stubEvaluator{result: "5"}, &stubDebiter{balance: one}, &memoryStore{saveErr: saveErr}, saveErr, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newStubPipeline(tt.pricer, tt.evaluator, tt.debiter, tt.store)
			rec, err := p.AddOperation(context.Background(), validRequest())
			assert.Nil(t, rec)
			assert.Same(t, tt.want, err)
			assert.Len(t, tt.debiter.amounts, tt.debited)
		})
	}
}

func TestAddOperation_NotSaved(t *testing.T) {
	p := newStubPipeline(stubPricer{cost: decimal.NewFromInt(1)}, stubEvaluator{result: "5"},
		&stubDebiter{balance: decimal.NewFromInt(9)}, &memoryStore{notSaved: true})

	rec, err := p.AddOperation(context.Background(), validRequest())
	assert.Nil(t, rec)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, constants.OperationNotSaved, apperr.MessageOf(err, ""))
}

func TestAddOperation_EndToEnd(t *testing.T) {
	accountID := uuid.New()
	userID := uuid.New()
	var debitBodies []string

	mux := http.NewServeMux()
	mux.HandleFunc("/user/balance/debit", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		debitBodies = append(debitBodies, string(body))
		_, _ = io.WriteString(w, `{"statusCode":200,"data":{"message":"Balance debited."}}`)
	})
	mux.HandleFunc("/user/profile", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"statusCode":200,"data":{"accounts":[{"id":"%s","balance":99.00}]}}`, accountID)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	types := stubTypes{types: []models.OperationType{
		{OperatorCode: constants.OperatorAddition, Cost: decimal.RequireFromString("1.00")},
		{OperatorCode: constants.OperatorMultiplication, Cost: decimal.RequireFromString("2.00")},
	}}
	debiter := account.NewClient(account.NewHTTPInvoker(5*time.Second, logger.Nop()), account.Config{
		Target:      srv.URL,
		DebitPath:   "/user/balance/debit",
		ProfilePath: "/user/profile",
	}, logger.Nop())
	store := &memoryStore{}

	p := NewPipeline(pricing.NewResolver(types), calculator.NewEvaluator(nil), debiter, store, types,
		decimal.NewFromInt(5000), logger.Nop())

	rec, err := p.AddOperation(context.Background(), AddOperationRequest{
		AccountID:  accountID,
		Expression: "10 + 5",
		UserID:     userID,
		Token:      "token",
	})
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "1.00", rec.Cost.StringFixed(2))
	assert.Equal(t, "15", rec.Result)
	assert.Equal(t, "10 + 5", rec.Expression)
	assert.Equal(t, "99.00", rec.UserBalance.StringFixed(2))
	assert.Equal(t, userID, rec.UserID)
	assert.NotEqual(t, uuid.Nil, rec.ID)

	require.Len(t, debitBodies, 1)
	assert.Equal(t, "1.00", gjson.Get(debitBodies[0], "amount").Raw)
	require.Len(t, store.saved, 1)
}

func TestGetPagedOperations_Defaults(t *testing.T) {
	store := &memoryStore{}
	for i := 0; i < 12; i++ {
		store.saved = append(store.saved, models.OperationRecord{ID: uuid.New()})
	}
	p := newStubPipeline(stubPricer{}, stubEvaluator{}, &stubDebiter{}, store)

	paged, err := p.GetPagedOperations(context.Background(), uuid.New(), -1, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 12, paged.Total)
	assert.Len(t, paged.Records, constants.DefaultPageSize)
}

func TestSoftDeleteOperations_EmptyIDs(t *testing.T) {
	store := &memoryStore{}
	p := newStubPipeline(stubPricer{}, stubEvaluator{}, &stubDebiter{}, store)

	ok, err := p.SoftDeleteOperations(context.Background(), uuid.New(), []uuid.UUID{})
	assert.False(t, ok)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, store.deleted)
}

func TestGetDashboard_AddsAnnualTarget(t *testing.T) {
	p := newStubPipeline(stubPricer{}, stubEvaluator{}, &stubDebiter{}, &memoryStore{})

	d, err := p.GetDashboard(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, d.TotalOperations)
	assert.True(t, d.TotalCredit.IsZero())
	assert.Equal(t, "5000", d.AnnualTarget.String())
}

func TestListOperationTypes_Empty(t *testing.T) {
	p := newStubPipeline(stubPricer{}, stubEvaluator{}, &stubDebiter{}, &memoryStore{})

	_, err := p.ListOperationTypes(context.Background())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, constants.NoOperationsFound, apperr.MessageOf(err, ""))
}
