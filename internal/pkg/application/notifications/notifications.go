package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/telemetry-deployments/pkg/types"
	"golang.org/x/sys/unix"
	yaml "gopkg.in/yaml.v2"
)

const (
	InconsistencyNotification string = "deployment.inconsistency"
	InconsistencyEventType    string = "diwise.deployment.inconsistency"
	EventSource               string = "github.com/diwise/telemetry-deployments"
)

//go:generate moq -rm -out notifications_mock.go . Notifier
type Notifier interface {
	Send(ctx context.Context, surveyID int, inconsistency types.Inconsistency) error
}

const DefaultSendTimeout time.Duration = 5 * time.Second

type notifier struct {
	subscribers map[string][]SubscriberConfig
	httpClient  http.Client
	now         func() time.Time

	mu        sync.Mutex
	delivered map[string]bool
}

// New returns a Notifier that posts each inconsistency once to every subscriber. An
// inconsistency that has been delivered to all subscribers is not sent again.
func New(cfg *Config) Notifier {
	n := &notifier{
		subscribers: make(map[string][]SubscriberConfig),
		httpClient:  http.Client{Timeout: DefaultSendTimeout},
		now:         time.Now,
		delivered:   make(map[string]bool),
	}

	if cfg != nil {
		for _, s := range cfg.Notifications {
			n.subscribers[s.Type] = append(n.subscribers[s.Type], s.Subscribers...)
		}
	}

	return n
}

func (n *notifier) Send(ctx context.Context, surveyID int, inconsistency types.Inconsistency) error {
	subscribers := n.subscribers[InconsistencyNotification]
	if len(subscribers) == 0 {
		return nil
	}

	id := fmt.Sprintf("%d:%s", inconsistency.Data.SimsDeploymentID, inconsistency.Data.BctwDeploymentID)
	key := inconsistency.Name + "/" + id

	if n.wasDelivered(key) {
		return nil
	}

	c, err := cloudevents.NewClientHTTP(cehttp.WithClient(n.httpClient))
	if err != nil {
		return err
	}

	event := cloudevents.NewEvent()
	event.SetID(id)
	event.SetTime(n.now().UTC())
	event.SetSource(EventSource)
	event.SetType(InconsistencyEventType)

	eventData := struct {
		SurveyID         int    `json:"surveyID"`
		Name             string `json:"name"`
		Message          string `json:"message"`
		SimsDeploymentID int    `json:"simsDeploymentID"`
		BctwDeploymentID string `json:"bctwDeploymentID"`
	}{
		SurveyID:         surveyID,
		Name:             inconsistency.Name,
		Message:          inconsistency.Message,
		SimsDeploymentID: inconsistency.Data.SimsDeploymentID,
		BctwDeploymentID: inconsistency.Data.BctwDeploymentID,
	}

	err = event.SetData(cloudevents.ApplicationJSON, eventData)
	if err != nil {
		return err
	}

	logger := logging.GetFromContext(ctx)

	var errs []error

	for _, s := range subscribers {
		ctxWithTarget := cloudevents.ContextWithTarget(ctx, s.Endpoint)

		result := c.Send(ctxWithTarget, event)
		if cloudevents.IsUndelivered(result) || errors.Is(result, unix.ECONNREFUSED) {
			logger.Error().Err(result).Msgf("failed to send event to %s", s.Endpoint)
			errs = append(errs, fmt.Errorf("%s: %w", s.Endpoint, result))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	n.mu.Lock()
	n.delivered[key] = true
	n.mu.Unlock()

	return nil
}

func (n *notifier) wasDelivered(key string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.delivered[key]
}

type SubscriberConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type Notification struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Type        string             `yaml:"type"`
	Subscribers []SubscriberConfig `yaml:"subscribers"`
}

type Config struct {
	Notifications []Notification `yaml:"notifications"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
