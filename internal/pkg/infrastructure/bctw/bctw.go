package bctw

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/apiclient"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/servicetoken"
	"github.com/diwise/telemetry-deployments/pkg/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var ErrRegistryUnavailable = fmt.Errorf("device registry is unavailable")

var tracer = otel.Tracer("telemetry-deployments/bctw")

// DeployDeviceRequest attaches a device to a critter. DeploymentID is generated by the
// caller and becomes the join key between the survey database and the registry.
type DeployDeviceRequest struct {
	DeploymentID    string     `json:"deployment_id"`
	CritterID       string     `json:"critter_id"`
	DeviceID        int        `json:"device_id"`
	DeviceMake      string     `json:"device_make"`
	DeviceModel     *string    `json:"device_model"`
	Frequency       *float64   `json:"frequency"`
	FrequencyUnit   *string    `json:"frequency_unit"`
	AttachmentStart time.Time  `json:"attachment_start"`
	AttachmentEnd   *time.Time `json:"attachment_end"`
}

type UpdateDeploymentRequest struct {
	DeploymentID    string     `json:"deployment_id"`
	AttachmentStart time.Time  `json:"attachment_start"`
	AttachmentEnd   *time.Time `json:"attachment_end"`
}

// Client talks to the device registry. The registry never updates a record in place: an
// update or a delete closes the current record by setting valid_to, and an update inserts
// a new record with the same deployment id.
//
//go:generate moq -rm -out bctw_mock.go . Client
type Client interface {
	CreateDeployment(ctx context.Context, req DeployDeviceRequest) (types.ExternalDeployment, error)
	GetDeploymentsByIDs(ctx context.Context, deploymentIDs []string) ([]types.ExternalDeployment, error)
	UpdateDeployment(ctx context.Context, req UpdateDeploymentRequest) ([]types.ExternalDeployment, error)
	DeleteDeployment(ctx context.Context, deploymentID string) error
	GetTelemetry(ctx context.Context, deploymentIDs []string, start, end time.Time) ([]types.TelemetryPoint, error)
}

type client struct {
	api *apiclient.Client
}

func New(baseURL string, tokens servicetoken.TokenSource, timeout time.Duration) Client {
	return &client{
		api: apiclient.New(baseURL, tokens, timeout, ErrRegistryUnavailable),
	}
}

func (c *client) CreateDeployment(ctx context.Context, req DeployDeviceRequest) (types.ExternalDeployment, error) {
	var err error
	ctx, span := tracer.Start(ctx, "deploy-device")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	span.SetAttributes(attribute.String("bctw_deployment_id", req.DeploymentID))

	log := logging.GetFromContext(ctx)
	log.Debug().Str("bctw_deployment_id", req.DeploymentID).Int("device_id", req.DeviceID).Msg("deploying device")

	result := types.ExternalDeployment{}
	_, err = c.api.Do(ctx, http.MethodPost, "/deploy-device", nil, req, &result)
	if err != nil {
		err = fmt.Errorf("failed to create deployment %s: %w", req.DeploymentID, err)
		return types.ExternalDeployment{}, err
	}

	return result, nil
}

func (c *client) GetDeploymentsByIDs(ctx context.Context, deploymentIDs []string) ([]types.ExternalDeployment, error) {
	if len(deploymentIDs) == 0 {
		return []types.ExternalDeployment{}, nil
	}

	var err error
	ctx, span := tracer.Start(ctx, "get-deployments")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	span.SetAttributes(attribute.Int("count", len(deploymentIDs)))

	result := []types.ExternalDeployment{}
	_, err = c.api.Do(ctx, http.MethodGet, "/get-deployments", url.Values{"deployment_ids": deploymentIDs}, nil, &result)
	if err != nil {
		err = fmt.Errorf("failed to fetch deployments: %w", err)
		return nil, err
	}

	return result, nil
}

func (c *client) UpdateDeployment(ctx context.Context, req UpdateDeploymentRequest) ([]types.ExternalDeployment, error) {
	var err error
	ctx, span := tracer.Start(ctx, "update-deployment")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	span.SetAttributes(attribute.String("bctw_deployment_id", req.DeploymentID))

	result := []types.ExternalDeployment{}
	_, err = c.api.Do(ctx, http.MethodPatch, "/update-deployment", nil, req, &result)
	if err != nil {
		err = fmt.Errorf("failed to update deployment %s: %w", req.DeploymentID, err)
		return nil, err
	}

	return result, nil
}

// DeleteDeployment closes the deployment in the registry. Deleting a deployment that the
// registry does not know about, or has already closed, is not an error.
func (c *client) DeleteDeployment(ctx context.Context, deploymentID string) error {
	var err error
	ctx, span := tracer.Start(ctx, "delete-deployment")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	span.SetAttributes(attribute.String("bctw_deployment_id", deploymentID))

	_, err = c.api.Do(ctx, http.MethodDelete, "/delete-deployment/"+url.PathEscape(deploymentID), nil, nil, nil)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			log := logging.GetFromContext(ctx)
			log.Info().Str("bctw_deployment_id", deploymentID).Msg("deployment already gone from registry")
			err = nil
			return nil
		}

		err = fmt.Errorf("failed to delete deployment %s: %w", deploymentID, err)
		return err
	}

	return nil
}

func (c *client) GetTelemetry(ctx context.Context, deploymentIDs []string, start, end time.Time) ([]types.TelemetryPoint, error) {
	if len(deploymentIDs) == 0 {
		return []types.TelemetryPoint{}, nil
	}

	var err error
	ctx, span := tracer.Start(ctx, "get-telemetry")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	query := url.Values{
		"deployment_ids": deploymentIDs,
		"start":          {start.UTC().Format(time.RFC3339)},
		"end":            {end.UTC().Format(time.RFC3339)},
	}

	result := []types.TelemetryPoint{}
	_, err = c.api.Do(ctx, http.MethodGet, "/get-telemetry", query, nil, &result)
	if err != nil {
		err = fmt.Errorf("failed to fetch telemetry: %w", err)
		return nil, err
	}

	return result, nil
}
