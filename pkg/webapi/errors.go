// Package webapi is the HTTP surface of the transfer engine: initiation
// endpoints, the worker completion callback, and read-only listings.
package webapi

import (
	"errors"
	"net/http"

	"github.com/cccb/transferd/pkg/transfer"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps engine errors onto HTTP responses. Callback
// authentication failures and unknown ids collapse into the same opaque 404
// so the callback endpoint doesn't leak which part of a probe was wrong.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, transfer.ErrOwnershipViolation):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, transfer.ErrMissingField),
		errors.Is(err, transfer.ErrInvalidDestinationName),
		errors.Is(err, transfer.ErrUnsupportedCombination),
		errors.Is(err, transfer.ErrNoTransferableItems),
		errors.Is(err, transfer.ErrUnauthorizedOrInactiveResource),
		errors.Is(err, transfer.ErrMalformedCallback):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, transfer.ErrAlreadyCompleted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, transfer.ErrCallbackAuthFailed),
		errors.Is(err, transfer.ErrUnknownTransfer),
		errors.Is(err, transfer.ErrUnknownCoordinator):
		return echo.ErrNotFound
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
