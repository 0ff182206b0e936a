package delivery

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/atadzan/calc-operation-api/internal/calculator"
	"github.com/atadzan/calc-operation-api/internal/constants"
	"github.com/atadzan/calc-operation-api/internal/models"
)

type addOperationInput struct {
	AccountID  string `json:"accountId"`
	Expression string `json:"expression"`
}

type deleteOperationsInput struct {
	IDs []string `json:"ids"`
}

type healthResp struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type operationTypeResp struct {
	ID            uuid.UUID   `json:"id"`
	Description   string      `json:"description"`
	OperationCode string      `json:"operationCode"`
	Cost          json.Number `json:"cost"`
}

type operationRecordResp struct {
	ID          uuid.UUID   `json:"id"`
	Cost        json.Number `json:"cost"`
	UserBalance json.Number `json:"userBalance"`
	Expression  string      `json:"expression"`
	Type        string      `json:"type"`
	Result      string      `json:"result"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type addOperationResp struct {
	Message         string              `json:"message"`
	OperationRecord operationRecordResp `json:"operationRecord"`
}

type pagedOperationsResp struct {
	Records  []operationRecordResp `json:"records"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

type dashboardResp struct {
	TotalOperations         int64       `json:"totalOperations"`
	TotalMonthlyOperations  int64       `json:"totalMonthlyOperations"`
	TotalCredit             json.Number `json:"totalCredit"`
	TotalAnnualCashAdded    json.Number `json:"totalAnnualCashAdded"`
	TotalPlatformOperations int64       `json:"totalPlatformOperations"`
	TotalPlatformCashSpent  json.Number `json:"totalPlatformCashSpent"`
	TotalPlatformCashAdded  json.Number `json:"totalPlatformCashAdded"`
	AnnualTarget            json.Number `json:"annualTarget"`
}

func newOperationRecordResp(r models.OperationRecord) operationRecordResp {
	recordType := constants.TypeArithmetic
	if calculator.IsRandomString(r.Expression) {
		recordType = constants.TypeRandomString
	}
	return operationRecordResp{
		ID:          r.ID,
		Cost:        money(r.Cost),
		UserBalance: money(r.UserBalance),
		Expression:  r.Expression,
		Type:        recordType,
		Result:      r.Result,
		CreatedAt:   r.CreatedAt,
	}
}

func newDashboardResp(d models.Dashboard) dashboardResp {
	return dashboardResp{
		TotalOperations:         d.TotalOperations,
		TotalMonthlyOperations:  d.TotalMonthlyOperations,
		TotalCredit:             money(d.TotalCredit),
		TotalAnnualCashAdded:    money(d.TotalAnnualCashAdded),
		TotalPlatformOperations: d.TotalPlatformOperations,
		TotalPlatformCashSpent:  money(d.TotalPlatformCashSpent),
		TotalPlatformCashAdded:  money(d.TotalPlatformCashAdded),
		AnnualTarget:            money(d.AnnualTarget),
	}
}
