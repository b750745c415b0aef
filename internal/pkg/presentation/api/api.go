package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/diwise/telemetry-deployments/internal/pkg/application/deployments"
	"github.com/diwise/telemetry-deployments/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("telemetry-deployments/api")

func RegisterHandlers(log zerolog.Logger, router *chi.Mux, svc deployments.DeploymentReconciler) *chi.Mux {

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1/surveys/{surveyID}", func(r chi.Router) {
		r.Post("/critters/{critterID}/deployments", createDeploymentHandler(log, svc))

		r.Route("/deployments", func(r chi.Router) {
			r.Get("/", listDeploymentsHandler(log, svc))
			r.Post("/delete", deleteDeploymentsHandler(log, svc))
			r.Get("/{deploymentID}", getDeploymentHandler(log, svc))
			r.Patch("/{deploymentID}", updateDeploymentHandler(log, svc))
			r.Delete("/{deploymentID}", deleteDeploymentHandler(log, svc))
		})

		r.Get("/telemetry", listTelemetryHandler(log, svc))
	})

	return router
}

func createDeploymentHandler(log zerolog.Logger, svc deployments.DeploymentReconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "create-deployment")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		surveyID, err := intParam(r, "surveyID")
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		critterID, err := intParam(r, "critterID")
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		req := types.CreateDeploymentRequest{}
		if err = decodeBody(r.Body, &req); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		d, err := svc.CreateDeployment(ctx, surveyID, critterID, req)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			DeploymentID     int    `json:"deployment_id"`
			BctwDeploymentID string `json:"bctw_deployment_id"`
		}{
			DeploymentID:     d.DeploymentID,
			BctwDeploymentID: d.BctwDeploymentID,
		})
	}
}

func listDeploymentsHandler(log zerolog.Logger, svc deployments.DeploymentReconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "list-deployments")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		surveyID, err := intParam(r, "surveyID")
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		result, err := svc.ListMergedForSurvey(ctx, surveyID)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func getDeploymentHandler(log zerolog.Logger, svc deployments.DeploymentReconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "get-deployment")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		surveyID, deploymentID, err := surveyAndDeployment(r)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		result, err := svc.GetMerged(ctx, surveyID, deploymentID)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func updateDeploymentHandler(log zerolog.Logger, svc deployments.DeploymentReconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "update-deployment")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		surveyID, deploymentID, err := surveyAndDeployment(r)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		req := types.UpdateDeploymentRequest{}
		if err = decodeBody(r.Body, &req); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		err = svc.UpdateDeployment(ctx, surveyID, deploymentID, req)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func deleteDeploymentHandler(log zerolog.Logger, svc deployments.DeploymentReconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "delete-deployment")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		surveyID, deploymentID, err := surveyAndDeployment(r)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		err = svc.DeleteDeployment(ctx, surveyID, deploymentID)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func deleteDeploymentsHandler(log zerolog.Logger, svc deployments.DeploymentReconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "delete-deployments")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		surveyID, err := intParam(r, "surveyID")
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		req := types.DeleteDeploymentsRequest{}
		if err = decodeBody(r.Body, &req); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		err = svc.DeleteDeploymentsInSurvey(ctx, surveyID, req.DeploymentIDs)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func listTelemetryHandler(log zerolog.Logger, svc deployments.DeploymentReconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "list-telemetry")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		surveyID, err := intParam(r, "surveyID")
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		start, err := timeParam(r, "start")
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		end, err := timeParam(r, "end")
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		points, err := svc.ListTelemetryForSurvey(ctx, surveyID, start, end)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Telemetry []types.TelemetryPoint `json:"telemetry"`
		}{
			Telemetry: points,
		})
	}
}

func surveyAndDeployment(r *http.Request) (int, int, error) {
	surveyID, err := intParam(r, "surveyID")
	if err != nil {
		return 0, 0, err
	}

	deploymentID, err := intParam(r, "deploymentID")
	if err != nil {
		return 0, 0, err
	}

	return surveyID, deploymentID, nil
}

func intParam(r *http.Request, name string) (int, error) {
	value := chi.URLParam(r, name)

	i, err := strconv.Atoi(value)
	if err != nil || i <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", deployments.ErrInvalidRequest, name, value)
	}

	return i, nil
}

func timeParam(r *http.Request, name string) (time.Time, error) {
	value := r.URL.Query().Get(name)

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be an RFC 3339 timestamp, got %q", deployments.ErrInvalidRequest, name, value)
	}

	return t, nil
}

func decodeBody(body io.Reader, v any) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: unable to read body: %s", deployments.ErrInvalidRequest, err.Error())
	}

	if err = json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: unable to unmarshal body: %s", deployments.ErrInvalidRequest, err.Error())
	}

	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(b)
}
