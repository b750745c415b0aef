// Package metrics provides Prometheus metrics for the deployments service.
package metrics

import (
	"errors"
	"net/http"

	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/apiclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// InconsistenciesTotal counts local deployments that could not be joined with exactly
	// one active registry record.
	InconsistenciesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deployments",
			Name:      "inconsistencies_total",
			Help:      "Total number of inconsistent deployments detected on read",
		},
		[]string{"kind"},
	)

	// ExternalFailuresTotal counts failed calls to the registry and the capture ledger.
	ExternalFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deployments",
			Name:      "external_failures_total",
			Help:      "Total number of failed calls to external systems",
		},
		[]string{"system", "kind"},
	)

	// SagaRollbacksTotal counts write operations that were compensated.
	SagaRollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deployments",
			Name:      "saga_rollbacks_total",
			Help:      "Total number of write operations that were rolled back",
		},
		[]string{"operation"},
	)
)

const (
	SystemRegistry string = "bctw"
	SystemLedger   string = "critterbase"
)

func Inconsistency(kind string) {
	InconsistenciesTotal.WithLabelValues(kind).Inc()
}

func Rollback(operation string) {
	SagaRollbacksTotal.WithLabelValues(operation).Inc()
}

// ExternalFailure records err against system, labelled "unavailable" for transport
// failures, "api" for upstream error responses and "other" for anything else.
func ExternalFailure(system string, err error) {
	if err == nil {
		return
	}

	kind := "other"

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		kind = "api"
	} else if apiclient.IsConnectionError(err) {
		kind = "unavailable"
	}

	ExternalFailuresTotal.WithLabelValues(system, kind).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
