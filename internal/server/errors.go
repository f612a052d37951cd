package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	chargedomain "github.com/fiadolabs/fiado/internal/charge/domain"
	debtdomain "github.com/fiadolabs/fiado/internal/debt/domain"
	"github.com/fiadolabs/fiado/internal/gateway"
	merchantdomain "github.com/fiadolabs/fiado/internal/merchant/domain"
	payoutdomain "github.com/fiadolabs/fiado/internal/payout/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: validationMessage(err),
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, debtdomain.ErrInvalidTransition),
		errors.Is(err, debtdomain.ErrDeleteForwarded),
		errors.Is(err, chargedomain.ErrDebtNotPayable):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: validationMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isGatewayError(err):
		return http.StatusBadGateway, errorPayload{
			Type:    "gateway_error",
			Message: "payment gateway error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, merchantdomain.ErrInvalidName),
		errors.Is(err, merchantdomain.ErrInvalidPixKey),
		errors.Is(err, merchantdomain.ErrInvalidID),
		errors.Is(err, merchantdomain.ErrInvalidMerchant),
		errors.Is(err, debtdomain.ErrInvalidAmount),
		errors.Is(err, debtdomain.ErrInvalidCustomer),
		errors.Is(err, debtdomain.ErrInvalidID),
		errors.Is(err, debtdomain.ErrInvalidStatus),
		errors.Is(err, chargedomain.ErrInvalidTxid),
		errors.Is(err, chargedomain.ErrInvalidAmount),
		errors.Is(err, chargedomain.ErrAmountMismatch),
		errors.Is(err, chargedomain.ErrMerchantMismatch),
		errors.Is(err, chargedomain.ErrInvalidExpiration):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, merchantdomain.ErrNotFound),
		errors.Is(err, debtdomain.ErrNotFound),
		errors.Is(err, chargedomain.ErrNotFound),
		errors.Is(err, payoutdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isGatewayError(err error) bool {
	if _, ok := gateway.IsAPIError(err); ok {
		return true
	}
	return errors.Is(err, gateway.ErrMissingCredentials) ||
		errors.Is(err, gateway.ErrInvalidCertificate)
}

func validationMessage(err error) string {
	if err == nil {
		return "validation error"
	}
	return strings.ReplaceAll(err.Error(), "_", " ")
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", payload.Type
	case status >= http.StatusBadRequest:
		return "client_error", payload.Type
	default:
		return "", payload.Type
	}
}
