// Package handler holds what the HTTP handler packages share: the domain
// error to HTTP response mapping and the request validator.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/domain"
)

// ErrorResponse is the JSON error body for every non-2xx response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// HTTPStatus maps a domain error code to an HTTP status.
func HTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EGONE:
		return http.StatusGone
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.ENOTIMPL:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes the JSON error response for err. Internal errors are
// logged with their full chain and answered with a generic message; field
// validation failures carry the per-field map.
func RespondError(c echo.Context, logger zerolog.Logger, err error) error {
	code := domain.ErrorCode(err)
	status := HTTPStatus(code)

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("op", domain.ErrorOp(err)).
			Str("path", c.Request().URL.Path).
			Msg("request failed")
	}

	return c.JSON(status, ErrorResponse{
		Error:  domain.ErrorMessage(err),
		Code:   code,
		Fields: domain.GetValidationFields(err),
	})
}
