package server

import (
	"errors"
	"net/http"
	"testing"

	chargedomain "github.com/fiadolabs/fiado/internal/charge/domain"
	debtdomain "github.com/fiadolabs/fiado/internal/debt/domain"
	"github.com/fiadolabs/fiado/internal/gateway"
	merchantdomain "github.com/fiadolabs/fiado/internal/merchant/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "validation_error"},
		{"invalid amount", debtdomain.ErrInvalidAmount, http.StatusBadRequest, "validation_error"},
		{"invalid txid", chargedomain.ErrInvalidTxid, http.StatusBadRequest, "validation_error"},
		{"charge amount", chargedomain.ErrInvalidAmount, http.StatusBadRequest, "validation_error"},
		{"amount mismatch", chargedomain.ErrAmountMismatch, http.StatusBadRequest, "validation_error"},
		{"merchant mismatch", chargedomain.ErrMerchantMismatch, http.StatusBadRequest, "validation_error"},
		{"short expiry", chargedomain.ErrInvalidExpiration, http.StatusBadRequest, "validation_error"},
		{"invalid transition", debtdomain.ErrInvalidTransition, http.StatusConflict, "conflict"},
		{"delete forwarded", debtdomain.ErrDeleteForwarded, http.StatusConflict, "conflict"},
		{"debt not payable", chargedomain.ErrDebtNotPayable, http.StatusConflict, "conflict"},
		{"merchant not found", merchantdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"gateway response", &gateway.APIError{StatusCode: 503, Body: "{}"}, http.StatusBadGateway, "gateway_error"},
		{"gateway credentials", gateway.ErrMissingCredentials, http.StatusBadGateway, "gateway_error"},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.typ, payload.Type)
		})
	}
}

func TestMapErrorHidesInternalDetails(t *testing.T) {
	_, payload := mapError(errors.New("pq: connection refused to 10.0.0.3"))
	assert.Equal(t, "internal server error", payload.Message)
	assert.NotContains(t, payload.Message, "10.0.0.3")
}

func TestClassifyErrorForLog(t *testing.T) {
	class, typ := classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "server_error", class)
	assert.Equal(t, "internal_error", typ)

	class, typ = classifyErrorForLog(ErrInvalidRequest)
	assert.Equal(t, "client_error", class)
	assert.Equal(t, "validation_error", typ)
}
