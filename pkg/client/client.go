package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/diwise/telemetry-deployments/pkg/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var ErrNotFound = errors.New("not found")

// ErrorResponse is the error body returned by the deployments service.
type ErrorResponse struct {
	StatusCode int      `json:"-"`
	Message    string   `json:"message"`
	Code       string   `json:"code"`
	Errors     []string `json:"errors"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("request failed with status code %d: %s (%s)", e.StatusCode, e.Message, e.Code)
}

type DeploymentsClient interface {
	CreateDeployment(ctx context.Context, surveyID, critterID int, req types.CreateDeploymentRequest) (types.LocalDeployment, error)
	ListDeployments(ctx context.Context, surveyID int) (types.DeploymentList, error)
	GetDeployment(ctx context.Context, surveyID, deploymentID int) (types.DeploymentResult, error)
	DeleteDeployments(ctx context.Context, surveyID int, deploymentIDs []int) error
}

type deploymentsClient struct {
	url        string
	httpClient *http.Client
}

var tracer = otel.Tracer("telemetry-deployments-client")

// New returns a client that authenticates against the deployments service with client
// credentials. An empty oauthTokenURL disables authentication.
func New(ctx context.Context, deploymentsURL, oauthTokenURL, oauthClientID, oauthClientSecret string) (DeploymentsClient, error) {
	transport := otelhttp.NewTransport(http.DefaultTransport)
	httpClient := &http.Client{Transport: transport}

	if oauthTokenURL != "" {
		oauthConfig := &clientcredentials.Config{
			ClientID:     oauthClientID,
			ClientSecret: oauthClientSecret,
			TokenURL:     oauthTokenURL,
		}

		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: transport})

		token, err := oauthConfig.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get client credentials from %s: %w", oauthTokenURL, err)
		}

		if !token.Valid() {
			return nil, fmt.Errorf("an invalid token was returned from %s", oauthTokenURL)
		}

		httpClient = oauthConfig.Client(ctx)
	}

	return &deploymentsClient{
		url:        strings.TrimSuffix(deploymentsURL, "/"),
		httpClient: httpClient,
	}, nil
}

func (c *deploymentsClient) CreateDeployment(ctx context.Context, surveyID, critterID int, req types.CreateDeploymentRequest) (types.LocalDeployment, error) {
	var err error
	ctx, span := tracer.Start(ctx, "create-deployment")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	result := types.LocalDeployment{CritterID: critterID}
	path := fmt.Sprintf("/api/v1/surveys/%d/critters/%d/deployments", surveyID, critterID)

	err = c.do(ctx, http.MethodPost, path, req, &result)
	return result, err
}

func (c *deploymentsClient) ListDeployments(ctx context.Context, surveyID int) (types.DeploymentList, error) {
	var err error
	ctx, span := tracer.Start(ctx, "list-deployments")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	result := types.DeploymentList{}
	err = c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/surveys/%d/deployments", surveyID), nil, &result)
	return result, err
}

func (c *deploymentsClient) GetDeployment(ctx context.Context, surveyID, deploymentID int) (types.DeploymentResult, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-deployment")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	result := types.DeploymentResult{}
	err = c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/surveys/%d/deployments/%d", surveyID, deploymentID), nil, &result)
	return result, err
}

func (c *deploymentsClient) DeleteDeployments(ctx context.Context, surveyID int, deploymentIDs []int) error {
	var err error
	ctx, span := tracer.Start(ctx, "delete-deployments")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body := types.DeleteDeploymentsRequest{DeploymentIDs: deploymentIDs}
	err = c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/surveys/%d/deployments/delete", surveyID), body, nil)
	return err
}

func (c *deploymentsClient) do(ctx context.Context, method, path string, body, result any) error {
	log := logging.GetFromContext(ctx)

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Add("Accept", "application/json")
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		e := &ErrorResponse{}
		if err := json.Unmarshal(respBody, e); err != nil {
			log.Debug().Err(err).Msg("response body is not an error document")
		}
		e.StatusCode = resp.StatusCode

		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrNotFound, e)
		}

		return e
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}

	if err = json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return nil
}
