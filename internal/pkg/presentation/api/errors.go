package api

import (
	"errors"
	"net/http"

	"github.com/diwise/telemetry-deployments/internal/pkg/application/deployments"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/apiclient"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/bctw"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/critterbase"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/repositories/database"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Errors  []string `json:"errors"`
}

const retryLaterMessage string = "an external system is temporarily unavailable, please try again later"

func toErrorResponse(err error) (int, errorResponse) {
	var apiErr *apiclient.APIError

	switch {
	case errors.Is(err, deployments.ErrDeploymentNotFound):
		return http.StatusNotFound, errorResponse{Message: "deployment not found", Code: "not_found"}
	case errors.Is(err, deployments.ErrCritterNotFound):
		return http.StatusNotFound, errorResponse{Message: "critter not found in survey", Code: "not_found"}
	case errors.Is(err, deployments.ErrInvalidRequest), errors.Is(err, database.ErrConflictingEndReferences):
		return http.StatusBadRequest, errorResponse{Message: err.Error(), Code: "invalid_request"}
	case errors.Is(err, bctw.ErrRegistryUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Message: retryLaterMessage, Code: "bctw_unavailable"}
	case errors.Is(err, critterbase.ErrLedgerUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Message: retryLaterMessage, Code: "critterbase_unavailable"}
	case errors.As(err, &apiErr):
		return http.StatusInternalServerError, errorResponse{Message: apiErr.Message, Code: "upstream_error", Errors: apiErr.Errors}
	default:
		return http.StatusInternalServerError, errorResponse{Message: "internal server error", Code: "internal_error"}
	}
}

func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	statusCode, body := toErrorResponse(err)
	if body.Errors == nil {
		body.Errors = []string{}
	}

	if statusCode >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", statusCode).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", statusCode).Msg("request rejected")
	}

	writeJSON(w, statusCode, body)
}
