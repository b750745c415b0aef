package critterbase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/apiclient"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/servicetoken"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var ErrLedgerUnavailable = fmt.Errorf("capture ledger is unavailable")

var tracer = otel.Tracer("telemetry-deployments/critterbase")

type Capture struct {
	CaptureID   string    `json:"capture_id"`
	CritterID   string    `json:"critter_id"`
	CaptureDate time.Time `json:"capture_date"`
}

type Mortality struct {
	MortalityID        string    `json:"mortality_id"`
	CritterID          string    `json:"critter_id"`
	MortalityTimestamp time.Time `json:"mortality_timestamp"`
}

//go:generate moq -rm -out critterbase_mock.go . Client
type Client interface {
	GetCapture(ctx context.Context, captureID string) (Capture, error)
	GetMortality(ctx context.Context, mortalityID string) (Mortality, error)
}

type client struct {
	api *apiclient.Client
}

func New(baseURL string, tokens servicetoken.TokenSource, timeout time.Duration) Client {
	return &client{
		api: apiclient.New(baseURL, tokens, timeout, ErrLedgerUnavailable),
	}
}

func (c *client) GetCapture(ctx context.Context, captureID string) (Capture, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-capture")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	span.SetAttributes(attribute.String("capture_id", captureID))

	capture := Capture{}
	_, err = c.api.Do(ctx, http.MethodGet, "/captures/"+url.PathEscape(captureID), nil, nil, &capture)
	if err != nil {
		err = fmt.Errorf("failed to look up capture %s: %w", captureID, err)
		return Capture{}, err
	}

	return capture, nil
}

func (c *client) GetMortality(ctx context.Context, mortalityID string) (Mortality, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-mortality")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	span.SetAttributes(attribute.String("mortality_id", mortalityID))

	mortality := Mortality{}
	_, err = c.api.Do(ctx, http.MethodGet, "/mortality/"+url.PathEscape(mortalityID), nil, nil, &mortality)
	if err != nil {
		err = fmt.Errorf("failed to look up mortality %s: %w", mortalityID, err)
		return Mortality{}, err
	}

	return mortality, nil
}
