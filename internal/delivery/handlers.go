package delivery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atadzan/calc-operation-api/internal/apperr"
	"github.com/atadzan/calc-operation-api/internal/constants"
	"github.com/atadzan/calc-operation-api/internal/models"
	"github.com/atadzan/calc-operation-api/internal/orchestrator"
)

// OperationService is what the handlers need from the pipeline.
type OperationService interface {
	AddOperation(ctx context.Context, req orchestrator.AddOperationRequest) (*models.OperationRecord, error)
	GetPagedOperations(ctx context.Context, userID uuid.UUID, page, pageSize int, query string) (*models.PagedOperations, error)
	SoftDeleteOperations(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (bool, error)
	GetDashboard(ctx context.Context, userID uuid.UUID) (*models.Dashboard, error)
	ListOperationTypes(ctx context.Context) ([]models.OperationType, error)
}

type OperationHandler struct {
	service OperationService
	log     zerolog.Logger
}

func NewOperationHandler(service OperationService, log zerolog.Logger) *OperationHandler {
	return &OperationHandler{service: service, log: log.With().Str("component", "operation_handler").Logger()}
}

func (h *OperationHandler) Health(w http.ResponseWriter, r *http.Request) {
	newResp(w, h.log, http.StatusOK, healthResp{Message: "Operation API is healthy", Timestamp: time.Now().UTC()})
}

func (h *OperationHandler) ListOperationTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListOperationTypes(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	resp := make([]operationTypeResp, 0, len(types))
	for _, t := range types {
		resp = append(resp, operationTypeResp{
			ID:            t.ID,
			Description:   t.Description,
			OperationCode: t.OperatorCode,
			Cost:          money(t.Cost),
		})
	}
	newResp(w, h.log, http.StatusOK, resp)
}

func (h *OperationHandler) AddOperation(w http.ResponseWriter, r *http.Request) {
	var input addOperationInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, h.log, err)
		return
	}

	var accountID uuid.UUID
	if strings.TrimSpace(input.AccountID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(input.AccountID))
		if err != nil {
			writeError(w, h.log, apperr.Validation(constants.InvalidRequestBody))
			return
		}
		accountID = id
	}

	record, err := h.service.AddOperation(r.Context(), orchestrator.AddOperationRequest{
		AccountID:  accountID,
		Expression: input.Expression,
		UserID:     userIDFrom(r.Context()),
		Token:      tokenFrom(r.Context()),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	newResp(w, h.log, http.StatusCreated, addOperationResp{
		Message:         constants.OperationAdded,
		OperationRecord: newOperationRecordResp(*record),
	})
}

// ListOperations serves page, pageSize and query; unparseable paging values fall back to defaults.
func (h *OperationHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), constants.DefaultPage)
	pageSize := intParam(q.Get("pageSize"), constants.DefaultPageSize)
	if page < 0 {
		page = constants.DefaultPage
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}

	paged, err := h.service.GetPagedOperations(r.Context(), userIDFrom(r.Context()), page, pageSize, q.Get("query"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	records := make([]operationRecordResp, 0, len(paged.Records))
	for _, rec := range paged.Records {
		records = append(records, newOperationRecordResp(rec))
	}
	newResp(w, h.log, http.StatusOK, pagedOperationsResp{
		Records:  records,
		Total:    paged.Total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *OperationHandler) DeleteOperations(w http.ResponseWriter, r *http.Request) {
	var input deleteOperationsInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, h.log, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(input.IDs))
	for _, raw := range input.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, h.log, apperr.Validation(constants.InvalidRequestBody))
			return
		}
		ids = append(ids, id)
	}

	deleted, err := h.service.SoftDeleteOperations(r.Context(), userIDFrom(r.Context()), ids)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if !deleted {
		newErrorResp(w, h.log, http.StatusNotFound, constants.RecordsNotFoundOrDeleted)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OperationHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.GetDashboard(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	newResp(w, h.log, http.StatusOK, newDashboardResp(*dashboard))
}

func (h *OperationHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	newErrorResp(w, h.log, http.StatusNotFound, constants.EndpointNotFound)
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Validation(constants.RequestBodyRequired)
	}
	defer r.Body.Close()

	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		return apperr.Validation(constants.InvalidRequestBody)
	}
	if len(strings.TrimSpace(string(reqBody))) == 0 {
		return apperr.Validation(constants.RequestBodyRequired)
	}
	if err = json.Unmarshal(reqBody, dst); err != nil {
		return &apperr.Error{Kind: apperr.KindValidation, Message: constants.InvalidRequestBody, Err: err}
	}
	return nil
}

func intParam(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
