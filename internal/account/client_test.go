package account

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/atadzan/calc-operation-api/internal/apperr"
	"github.com/atadzan/calc-operation-api/internal/constants"
	"github.com/atadzan/calc-operation-api/pkg/logger"
)

const (
	debitPath   = "/user/balance/debit"
	profilePath = "/user/profile"
	token       = "token-123"
)

// fakeAccountService records debit calls and answers with the configured profile.
type fakeAccountService struct {
	debitStatus int
	debitBody   string
	profileCode int
	profileBody string

	debits []string
	auth   []string
}

func (f *fakeAccountService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(debitPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.debits = append(f.debits, string(body))
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		w.WriteHeader(f.debitStatus)
		_, _ = io.WriteString(w, f.debitBody)
	})
	mux.HandleFunc(profilePath, func(w http.ResponseWriter, r *http.Request) {
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		w.WriteHeader(f.profileCode)
		_, _ = io.WriteString(w, f.profileBody)
	})
	return mux
}

func profile(accountID uuid.UUID, balance string) string {
	return fmt.Sprintf(`{"statusCode":200,"data":{"id":"%s","accounts":[{"id":"%s","balance":1.00},{"id":"%s","balance":%s}]}}`,
		uuid.New(), uuid.New(), accountID, balance)
}

func newTestClient(t *testing.T, svc *fakeAccountService) *Client {
	t.Helper()
	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)

	return NewClient(NewHTTPInvoker(5*time.Second, logger.Nop()), Config{
		Target:      srv.URL,
		DebitPath:   debitPath,
		ProfilePath: profilePath,
	}, logger.Nop())
}

func TestDebit_ReturnsReportedBalance(t *testing.T) {
	accountID := uuid.New()
	svc := &fakeAccountService{
		debitStatus: http.StatusOK,
		debitBody:   `{"statusCode":200,"data":{"message":"ok"}}`,
		profileCode: http.StatusOK,
		profileBody: profile(accountID, "99.00"),
	}
	client := newTestClient(t, svc)

	balance, err := client.Debit(context.Background(), accountID, decimal.RequireFromString("1"), token)
	require.NoError(t, err)
	assert.Equal(t, "99.00", balance.StringFixed(2))

	require.Len(t, svc.debits, 1)
	assert.Equal(t, accountID.String(), gjson.Get(svc.debits[0], "accountId").String())
	assert.Equal(t, "1.00", gjson.Get(svc.debits[0], "amount").Raw)
	assert.Equal(t, []string{"Bearer " + token, "Bearer " + token}, svc.auth)
}

func TestDebit_Failures(t *testing.T) {
	accountID := uuid.New()

	tests := []struct {
		name     string
		svc      *fakeAccountService
		kind     apperr.Kind
		message  string
		profiled bool
	}{
		{
			name:    "remote error message",
			svc:     &fakeAccountService{debitStatus: http.StatusBadRequest, debitBody: `{"statusCode":400,"data":{"error":"Insufficient balance."}}`},
			kind:    apperr.KindBusiness,
			message: "Insufficient balance.",
		},
		{
			name:    "error envelope without message",
			svc:     &fakeAccountService{debitStatus: http.StatusInternalServerError, debitBody: `{"statusCode":500}`},
			kind:    apperr.KindBusiness,
			message: constants.DebitFailedFallback,
		},
		{
			name:    "unparseable error body",
			svc:     &fakeAccountService{debitStatus: http.StatusBadGateway, debitBody: `<html>bad gateway</html>`},
			kind:    apperr.KindBusiness,
			message: constants.DebitErrorUnparseable,
		},
		{
			name:    "empty success body",
			svc:     &fakeAccountService{debitStatus: http.StatusOK},
			kind:    apperr.KindBusiness,
			message: constants.DebitErrorUnparseable,
		},
		{
			name: "profile unavailable",
			svc: &fakeAccountService{
				debitStatus: http.StatusOK, debitBody: `{"data":{}}`,
				profileCode: http.StatusUnauthorized, profileBody: `{"data":{"error":"Invalid token."}}`,
			},
			kind:     apperr.KindBusiness,
			message:  constants.ProfileFetchFailed,
			profiled: true,
		},
		{
			name: "account missing from profile",
			svc: &fakeAccountService{
				debitStatus: http.StatusOK, debitBody: `{"data":{}}`,
				profileCode: http.StatusOK, profileBody: profile(uuid.New(), "10.00"),
			},
			kind:     apperr.KindNotFound,
			message:  fmt.Sprintf(constants.AccountNotFound, accountID),
			profiled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.svc)
			_, err := client.Debit(context.Background(), accountID, decimal.RequireFromString("2.00"), token)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Equal(t, tt.message, apperr.MessageOf(err, ""))
			if tt.profiled {
				assert.Len(t, tt.svc.auth, 2)
			} else {
				assert.Len(t, tt.svc.auth, 1, "profile must not be fetched after a failed debit")
			}
		})
	}
}

type fakeLambda struct {
	inputs  []Request
	respond func(Request) []byte
	fnError *string
}

func (f *fakeLambda) Invoke(_ context.Context, in *lambda.InvokeInput, _ ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	var req Request
	if err := json.Unmarshal(in.Payload, &req); err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, req)
	return &lambda.InvokeOutput{StatusCode: 200, Payload: f.respond(req), FunctionError: f.fnError}, nil
}

func TestDebit_ThroughLambda(t *testing.T) {
	accountID := uuid.New()
	fn := &fakeLambda{respond: func(req Request) []byte {
		body := `{"data":{"message":"ok"}}`
		if req.Path == profilePath {
			body = profile(accountID, "48.50")
		}
		out, _ := json.Marshal(Response{StatusCode: 200, Body: body})
		return out
	}}
	client := NewClient(NewLambdaInvoker(fn, logger.Nop()), Config{
		Target:      "arn:aws:lambda:us-east-1:123456789012:function:user-api",
		DebitPath:   debitPath,
		ProfilePath: profilePath,
	}, logger.Nop())

	balance, err := client.Debit(context.Background(), accountID, decimal.RequireFromString("1.50"), token)
	require.NoError(t, err)
	assert.Equal(t, "48.50", balance.StringFixed(2))

	require.Len(t, fn.inputs, 2)
	assert.Equal(t, http.MethodPut, fn.inputs[0].HTTPMethod)
	assert.Equal(t, debitPath, fn.inputs[0].Path)
	assert.Equal(t, "Bearer "+token, fn.inputs[0].Headers["Authorization"])
	assert.Equal(t, "1.50", gjson.Get(fn.inputs[0].Body, "amount").Raw)
	assert.Equal(t, http.MethodGet, fn.inputs[1].HTTPMethod)
	assert.Equal(t, profilePath, fn.inputs[1].Path)
}

func TestLambdaInvoker_FunctionError(t *testing.T) {
	unhandled := "Unhandled"
	fn := &fakeLambda{
		fnError: &unhandled,
		respond: func(Request) []byte { return []byte(`{"errorMessage":"boom"}`) },
	}

	_, err := NewLambdaInvoker(fn, logger.Nop()).Invoke(context.Background(), "user-api", Request{HTTPMethod: http.MethodGet, Path: profilePath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unhandled")
}
