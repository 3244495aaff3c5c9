package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/indexdata/crosslink/econtent/axis360"
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/settings"
	"github.com/jackc/pgx/v5"
)

type ErrorMessage struct {
	Error string `json:"error"`
}

func writeJsonResponse(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeErrorStatus(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorMessage{Error: msg})
}

func addNotFoundError(w http.ResponseWriter) {
	writeErrorStatus(w, http.StatusNotFound, "not found")
}

func addBadRequestError(ctx extctx.ExtendedContext, w http.ResponseWriter, err error) {
	ctx.Logger().Error("error serving api request", "error", err.Error())
	writeErrorStatus(w, http.StatusBadRequest, err.Error())
}

// addError maps failures of the vendor exchange to a status: the vendor refusing or
// being unreachable is a bad gateway, missing configuration is unavailable.
func addError(ctx extctx.ExtendedContext, w http.ResponseWriter, err error) {
	var vendorErr *axis360.VendorError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		addNotFoundError(w)
		return
	case errors.As(err, &vendorErr), errors.Is(err, axis360.ErrTransport):
		status = http.StatusBadGateway
	case errors.Is(err, settings.ErrNoSettings):
		status = http.StatusServiceUnavailable
	}
	ctx.Logger().Error("error serving api request", "error", err.Error(), "status", status)
	writeErrorStatus(w, status, err.Error())
}
