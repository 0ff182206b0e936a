package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/atadzan/calc-operation-api/internal/apperr"
	"github.com/atadzan/calc-operation-api/internal/constants"
)

// envelope wraps every response body.
type envelope struct {
	StatusCode int `json:"statusCode"`
	Data       any `json:"data"`
}

type errorStruct struct {
	ErrorMsg string `json:"error"`
}

func newResp(w http.ResponseWriter, log zerolog.Logger, httpStatus int, data any) {
	rawBody, err := json.Marshal(envelope{StatusCode: httpStatus, Data: data})
	if err != nil {
		log.Error().Err(err).Msg("can't marshal response body")
		httpStatus = http.StatusInternalServerError
		rawBody = []byte(`{"statusCode":500,"data":{"error":"` + constants.InternalServerError + `"}}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if _, err = w.Write(rawBody); err != nil {
		log.Error().Err(err).Int("status", httpStatus).Msg("can't write response body")
	}
}

func newErrorResp(w http.ResponseWriter, log zerolog.Logger, httpStatus int, respMsg string) {
	newResp(w, log, httpStatus, errorStruct{ErrorMsg: respMsg})
}

// errorStatus maps an error to its HTTP status and the message safe to show the client.
func errorStatus(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindBusiness:
		return http.StatusBadRequest, apperr.MessageOf(err, constants.InternalServerError)
	case apperr.KindNotFound:
		return http.StatusNotFound, apperr.MessageOf(err, constants.InternalServerError)
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized, apperr.MessageOf(err, constants.InvalidToken)
	default:
		return http.StatusInternalServerError, constants.InternalServerError
	}
}

func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	} else {
		log.Warn().Err(err).Int("status", status).Msg("request rejected")
	}
	newErrorResp(w, log, status, msg)
}

// money renders d with two decimals as a JSON number.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
