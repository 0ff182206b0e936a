package account

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/atadzan/calc-operation-api/internal/apperr"
	"github.com/atadzan/calc-operation-api/internal/constants"
)

type Config struct {
	// Target is handed to the Invoker unchanged.
	Target      string
	DebitPath   string
	ProfilePath string
}

// Client debits accounts through the account service and reads back the balance it reports.
// It never computes balances itself and never retries.
type Client struct {
	invoker Invoker
	cfg     Config
	log     zerolog.Logger
}

func NewClient(invoker Invoker, cfg Config, log zerolog.Logger) *Client {
	return &Client{
		invoker: invoker,
		cfg:     cfg,
		log:     log.With().Str("component", "balance_debit").Logger(),
	}
}

type debitBody struct {
	AccountID string      `json:"accountId"`
	Amount    json.Number `json:"amount"`
}

// Debit charges amount to accountID on behalf of the token's owner and returns the
// balance the account service reports afterwards.
func (c *Client) Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, token string) (decimal.Decimal, error) {
	c.log.Info().Str("account_id", accountID.String()).Str("amount", amount.StringFixed(2)).Msg("debiting account")

	body, err := json.Marshal(debitBody{AccountID: accountID.String(), Amount: json.Number(amount.StringFixed(2))})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to marshal debit body: %w", err)
	}

	resp, err := c.invoker.Invoke(ctx, c.cfg.Target, Request{
		HTTPMethod: http.MethodPut,
		Path:       c.cfg.DebitPath,
		Headers:    authHeaders(token),
		Body:       string(body),
	})
	if err != nil {
		return decimal.Zero, apperr.Business(constants.DebitFailedFallback, err)
	}
	if !resp.Success() || resp.Body == "" {
		return decimal.Zero, debitError(resp)
	}

	return c.balance(ctx, accountID, token)
}

// debitError extracts the message from the {"data":{"error":"..."}} envelope the account service returns.
func debitError(resp *Response) error {
	cause := fmt.Errorf("debit returned status %d", resp.StatusCode)
	if !gjson.Valid(resp.Body) {
		return apperr.Business(constants.DebitErrorUnparseable, cause)
	}
	if msg := gjson.Get(resp.Body, "data.error").String(); msg != "" {
		return apperr.Business(msg, cause)
	}
	return apperr.Business(constants.DebitFailedFallback, cause)
}

func (c *Client) balance(ctx context.Context, accountID uuid.UUID, token string) (decimal.Decimal, error) {
	resp, err := c.invoker.Invoke(ctx, c.cfg.Target, Request{
		HTTPMethod: http.MethodGet,
		Path:       c.cfg.ProfilePath,
		Headers:    authHeaders(token),
	})
	if err != nil {
		return decimal.Zero, apperr.Business(constants.ProfileFetchFailed, err)
	}
	if !resp.Success() || resp.Body == "" || !gjson.Valid(resp.Body) {
		return decimal.Zero, apperr.Business(constants.ProfileFetchFailed, fmt.Errorf("profile returned status %d", resp.StatusCode))
	}

	var found *gjson.Result
	gjson.Get(resp.Body, "data.accounts").ForEach(func(_, acc gjson.Result) bool {
		id, err := uuid.Parse(acc.Get("id").String())
		if err == nil && id == accountID {
			found = &acc
			return false
		}
		return true
	})
	if found == nil {
		c.log.Error().Str("account_id", accountID.String()).Msg("account not found in profile response")
		return decimal.Zero, apperr.NotFound(fmt.Sprintf(constants.AccountNotFound, accountID))
	}

	raw := found.Get("balance")
	text := raw.String()
	if raw.Type == gjson.Number {
		text = raw.Raw
	}
	balance, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, apperr.Business(constants.ProfileFetchFailed, err)
	}

	c.log.Info().Str("account_id", accountID.String()).Str("balance", balance.StringFixed(2)).Msg("updated balance retrieved")
	return balance, nil
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
