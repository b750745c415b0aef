package deployments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/diwise/telemetry-deployments/internal/pkg/application/notifications"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/bctw"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/critterbase"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/metrics"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/telemetry-deployments/pkg/types"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("telemetry-deployments/deployments")

var ErrInvalidRequest = fmt.Errorf("invalid request")
var ErrDeploymentNotFound = database.ErrDeploymentNotFound
var ErrCritterNotFound = database.ErrCritterNotFound

// DeploymentReconciler is the only component that writes to, or reads across, both the
// survey database and the device registry.
//
//go:generate moq -rm -out deployments_mock.go . DeploymentReconciler
type DeploymentReconciler interface {
	CreateDeployment(ctx context.Context, surveyID, critterID int, req types.CreateDeploymentRequest) (types.LocalDeployment, error)
	UpdateDeployment(ctx context.Context, surveyID, deploymentID int, req types.UpdateDeploymentRequest) error
	DeleteDeploymentsInSurvey(ctx context.Context, surveyID int, deploymentIDs []int) error
	DeleteDeployment(ctx context.Context, surveyID, deploymentID int) error

	ListMergedForSurvey(ctx context.Context, surveyID int) (types.DeploymentList, error)
	GetMerged(ctx context.Context, surveyID, deploymentID int) (types.DeploymentResult, error)
	ListTelemetryForSurvey(ctx context.Context, surveyID int, start, end time.Time) ([]types.TelemetryPoint, error)
}

type reconciler struct {
	repo      database.DeploymentRepository
	registry  bctw.Client
	ledger    critterbase.Client
	messenger messaging.MsgContext
	notifier  notifications.Notifier

	validate *validator.Validate
	now      func() time.Time

	notifications sync.WaitGroup
}

const notifyTimeout time.Duration = 10 * time.Second

func New(repo database.DeploymentRepository, registry bctw.Client, ledger critterbase.Client, messenger messaging.MsgContext, notifier notifications.Notifier) DeploymentReconciler {
	return newReconciler(repo, registry, ledger, messenger, notifier)
}

func newReconciler(repo database.DeploymentRepository, registry bctw.Client, ledger critterbase.Client, messenger messaging.MsgContext, notifier notifications.Notifier) *reconciler {
	return &reconciler{
		repo:      repo,
		registry:  registry,
		ledger:    ledger,
		messenger: messenger,
		notifier:  notifier,
		validate:  validator.New(),
		now:       time.Now,
	}
}

func (r *reconciler) CreateDeployment(ctx context.Context, surveyID, critterID int, req types.CreateDeploymentRequest) (types.LocalDeployment, error) {
	var err error
	ctx, span := tracer.Start(ctx, "create-deployment")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if err = r.validateRequest(req); err != nil {
		return types.LocalDeployment{}, err
	}

	tx, err := r.repo.Begin(ctx)
	if err != nil {
		return types.LocalDeployment{}, err
	}
	defer tx.Rollback()

	deployment := &database.Deployment{
		CritterID:                 critterID,
		BctwDeploymentID:          uuid.NewString(),
		CritterbaseStartCaptureID: req.CritterbaseStartCaptureID,
		CritterbaseEndCaptureID:   req.CritterbaseEndCaptureID,
		CritterbaseEndMortalityID: req.CritterbaseEndMortalityID,
	}

	log := logging.GetFromContext(ctx).With().
		Int("survey_id", surveyID).
		Int("critter_id", critterID).
		Str("bctw_deployment_id", deployment.BctwDeploymentID).
		Logger()
	ctx = logging.NewContextWithLogger(ctx, log)

	var critter database.SurveyCritter
	var window attachmentWindow

	err = newSaga("create",
		step{
			name: "find-critter",
			action: func(ctx context.Context) (err error) {
				critter, err = tx.GetCritter(ctx, surveyID, critterID)
				return
			},
		},
		step{
			name:       "insert-local",
			action:     func(ctx context.Context) error { return tx.Insert(ctx, deployment) },
			compensate: func(ctx context.Context) error { return tx.Rollback() },
		},
		step{
			name: "resolve-attachment",
			action: func(ctx context.Context) (err error) {
				window, err = r.resolveAttachment(ctx, req.CritterbaseStartCaptureID, req.CritterbaseEndCaptureID, req.CritterbaseEndMortalityID)
				return
			},
		},
		step{
			name: "create-external",
			action: func(ctx context.Context) error {
				_, err := r.registry.CreateDeployment(ctx, bctw.DeployDeviceRequest{
					DeploymentID:    deployment.BctwDeploymentID,
					CritterID:       critter.CritterbaseCritterID,
					DeviceID:        req.DeviceID,
					DeviceMake:      req.DeviceMake,
					DeviceModel:     req.DeviceModel,
					Frequency:       req.Frequency,
					FrequencyUnit:   req.FrequencyUnit,
					AttachmentStart: window.start,
					AttachmentEnd:   window.end,
				})
				metrics.ExternalFailure(metrics.SystemRegistry, err)
				return err
			},
			compensate: func(ctx context.Context) error {
				err := r.registry.DeleteDeployment(ctx, deployment.BctwDeploymentID)
				metrics.ExternalFailure(metrics.SystemRegistry, err)
				return err
			},
		},
		step{
			name:   "commit",
			action: func(ctx context.Context) error { return tx.Commit() },
		},
	).run(ctx)

	if err != nil {
		metrics.Rollback("create")
		return types.LocalDeployment{}, err
	}

	log.Info().Int("deployment_id", deployment.DeploymentID).Msg("deployment created")

	r.publish(ctx, &types.DeploymentCreated{
		DeploymentID:     deployment.DeploymentID,
		BctwDeploymentID: deployment.BctwDeploymentID,
		SurveyID:         surveyID,
		Timestamp:        r.now().UTC(),
	})

	return toLocalDeployment(*deployment), nil
}

func (r *reconciler) UpdateDeployment(ctx context.Context, surveyID, deploymentID int, req types.UpdateDeploymentRequest) error {
	var err error
	ctx, span := tracer.Start(ctx, "update-deployment")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if err = r.validateRequest(req); err != nil {
		return err
	}

	tx, err := r.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current, err := tx.GetByID(ctx, surveyID, deploymentID)
	if err != nil {
		return err
	}

	log := logging.GetFromContext(ctx).With().
		Int("survey_id", surveyID).
		Int("deployment_id", deploymentID).
		Str("bctw_deployment_id", current.BctwDeploymentID).
		Logger()
	ctx = logging.NewContextWithLogger(ctx, log)

	var window attachmentWindow

	err = newSaga("update",
		step{
			name: "update-local",
			action: func(ctx context.Context) error {
				return tx.Update(ctx, surveyID, deploymentID, database.DeploymentUpdate{
					CritterbaseStartCaptureID: req.CritterbaseStartCaptureID,
					CritterbaseEndCaptureID:   req.CritterbaseEndCaptureID,
					CritterbaseEndMortalityID: req.CritterbaseEndMortalityID,
				})
			},
			compensate: func(ctx context.Context) error { return tx.Rollback() },
		},
		step{
			name: "resolve-attachment",
			action: func(ctx context.Context) (err error) {
				window, err = r.resolveAttachment(ctx, req.CritterbaseStartCaptureID, req.CritterbaseEndCaptureID, req.CritterbaseEndMortalityID)
				return
			},
		},
		step{
			name: "update-external",
			action: func(ctx context.Context) error {
				_, err := r.registry.UpdateDeployment(ctx, bctw.UpdateDeploymentRequest{
					DeploymentID:    current.BctwDeploymentID,
					AttachmentStart: window.start,
					AttachmentEnd:   window.end,
				})
				metrics.ExternalFailure(metrics.SystemRegistry, err)
				return err
			},
			compensate: func(ctx context.Context) error {
				previous, err := r.resolveAttachment(ctx, current.CritterbaseStartCaptureID, current.CritterbaseEndCaptureID, current.CritterbaseEndMortalityID)
				if err != nil {
					return err
				}

				_, err = r.registry.UpdateDeployment(ctx, bctw.UpdateDeploymentRequest{
					DeploymentID:    current.BctwDeploymentID,
					AttachmentStart: previous.start,
					AttachmentEnd:   previous.end,
				})
				metrics.ExternalFailure(metrics.SystemRegistry, err)
				return err
			},
		},
		step{
			name:   "commit",
			action: func(ctx context.Context) error { return tx.Commit() },
		},
	).run(ctx)

	if err != nil {
		metrics.Rollback("update")
		return err
	}

	log.Info().Msg("deployment updated")

	r.publish(ctx, &types.DeploymentUpdated{
		DeploymentID:     deploymentID,
		BctwDeploymentID: current.BctwDeploymentID,
		SurveyID:         surveyID,
		Timestamp:        r.now().UTC(),
	})

	return nil
}

// DeleteDeploymentsInSurvey closes every deployment locally and then deletes them from the
// registry in parallel. All local changes are made in one transaction that is rolled back
// if any deployment fails.
// Registry deletes that succeeded before the failure are not undone and will show up as
// NoActiveDeploymentFound on the next read.
func (r *reconciler) DeleteDeploymentsInSurvey(ctx context.Context, surveyID int, deploymentIDs []int) error {
	var err error
	ctx, span := tracer.Start(ctx, "delete-deployments")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if err = r.validateRequest(types.DeleteDeploymentsRequest{DeploymentIDs: deploymentIDs}); err != nil {
		return err
	}

	tx, err := r.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	log := logging.GetFromContext(ctx).With().Int("survey_id", surveyID).Logger()
	ctx = logging.NewContextWithLogger(ctx, log)

	ids := lo.Uniq(deploymentIDs)
	bctwIDs := make([]string, len(ids))

	// a transaction is bound to one connection, so local closes run one at a time
	for i, id := range ids {
		bctwIDs[i], err = tx.EndDeployment(ctx, surveyID, id)
		if err != nil {
			err = fmt.Errorf("failed to end deployment %d: %w", id, err)
			log.Error().Err(err).Msg("failed to delete deployments, rolling back")
			metrics.Rollback("delete")
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, bctwID := range bctwIDs {
		bctwID := bctwID

		g.Go(func() error {
			err := r.registry.DeleteDeployment(gctx, bctwID)
			if err != nil {
				metrics.ExternalFailure(metrics.SystemRegistry, err)
				return err
			}

			return nil
		})
	}

	if err = g.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to delete deployments, rolling back")
		metrics.Rollback("delete")
		return err
	}

	if err = tx.Commit(); err != nil {
		metrics.Rollback("delete")
		return err
	}

	timestamp := r.now().UTC()

	for i, id := range ids {
		log.Info().Int("deployment_id", id).Str("bctw_deployment_id", bctwIDs[i]).Msg("deployment deleted")

		r.publish(ctx, &types.DeploymentDeleted{
			DeploymentID:     id,
			BctwDeploymentID: bctwIDs[i],
			SurveyID:         surveyID,
			Timestamp:        timestamp,
		})
	}

	return nil
}

func (r *reconciler) DeleteDeployment(ctx context.Context, surveyID, deploymentID int) error {
	return r.DeleteDeploymentsInSurvey(ctx, surveyID, []int{deploymentID})
}

func (r *reconciler) ListMergedForSurvey(ctx context.Context, surveyID int) (types.DeploymentList, error) {
	var err error
	ctx, span := tracer.Start(ctx, "list-merged-deployments")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	local, err := r.listLocal(ctx, surveyID)
	if err != nil {
		return types.DeploymentList{}, err
	}

	if len(local) == 0 {
		return types.DeploymentList{
			Deployments:    []types.MergedDeployment{},
			BadDeployments: []types.Inconsistency{},
		}, nil
	}

	joinKeys := lo.Uniq(lo.Map(local, func(d database.Deployment, _ int) string { return d.BctwDeploymentID }))

	external, err := r.registry.GetDeploymentsByIDs(ctx, joinKeys)
	if err != nil {
		metrics.ExternalFailure(metrics.SystemRegistry, err)
		return types.DeploymentList{}, err
	}

	result := merge(local, external, r.now())
	r.report(ctx, surveyID, result.BadDeployments)

	return result, nil
}

func (r *reconciler) GetMerged(ctx context.Context, surveyID, deploymentID int) (types.DeploymentResult, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-merged-deployment")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	tx, err := r.repo.Begin(ctx)
	if err != nil {
		return types.DeploymentResult{}, err
	}

	d, err := tx.GetByID(ctx, surveyID, deploymentID)
	tx.Rollback()

	if err != nil {
		return types.DeploymentResult{}, err
	}

	external, err := r.registry.GetDeploymentsByIDs(ctx, []string{d.BctwDeploymentID})
	if err != nil {
		metrics.ExternalFailure(metrics.SystemRegistry, err)
		return types.DeploymentResult{}, err
	}

	merged := merge([]database.Deployment{d}, external, r.now())
	r.report(ctx, surveyID, merged.BadDeployments)

	result := types.DeploymentResult{}
	if len(merged.Deployments) == 1 {
		result.Deployment = &merged.Deployments[0]
	} else {
		result.BadDeployment = &merged.BadDeployments[0]
	}

	return result, nil
}

func (r *reconciler) ListTelemetryForSurvey(ctx context.Context, surveyID int, start, end time.Time) ([]types.TelemetryPoint, error) {
	var err error
	ctx, span := tracer.Start(ctx, "list-telemetry")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if end.Before(start) {
		err = fmt.Errorf("%w: end %s is before start %s", ErrInvalidRequest, end.Format(time.RFC3339), start.Format(time.RFC3339))
		return nil, err
	}

	local, err := r.listLocal(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	if len(local) == 0 {
		return []types.TelemetryPoint{}, nil
	}

	joinKeys := lo.Uniq(lo.Map(local, func(d database.Deployment, _ int) string { return d.BctwDeploymentID }))

	points, err := r.registry.GetTelemetry(ctx, joinKeys, start, end)
	if err != nil {
		metrics.ExternalFailure(metrics.SystemRegistry, err)
		return nil, err
	}

	return points, nil
}

// listLocal reads the survey's deployments in a short lived transaction so that no
// connection is held while waiting for the registry.
func (r *reconciler) listLocal(ctx context.Context, surveyID int) ([]database.Deployment, error) {
	tx, err := r.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	return tx.ListForSurvey(ctx, surveyID)
}

type attachmentWindow struct {
	start time.Time
	end   *time.Time
}

// resolveAttachment looks up the attachment window of a deployment in the capture ledger.
// The capture date of the start capture is the attachment start, and the end is taken
// from either the end capture or the mortality.
func (r *reconciler) resolveAttachment(ctx context.Context, startCaptureID string, endCaptureID, endMortalityID *string) (attachmentWindow, error) {
	window := attachmentWindow{}

	capture, err := r.ledger.GetCapture(ctx, startCaptureID)
	if err != nil {
		metrics.ExternalFailure(metrics.SystemLedger, err)
		return window, err
	}

	window.start = capture.CaptureDate

	if endCaptureID != nil {
		endCapture, err := r.ledger.GetCapture(ctx, *endCaptureID)
		if err != nil {
			metrics.ExternalFailure(metrics.SystemLedger, err)
			return window, err
		}
		window.end = &endCapture.CaptureDate
	} else if endMortalityID != nil {
		mortality, err := r.ledger.GetMortality(ctx, *endMortalityID)
		if err != nil {
			metrics.ExternalFailure(metrics.SystemLedger, err)
			return window, err
		}
		window.end = &mortality.MortalityTimestamp
	}

	return window, nil
}

// report counts and logs inconsistencies and hands them to the notifier in the
// background, so that a slow subscriber never delays the read that found them.
func (r *reconciler) report(ctx context.Context, surveyID int, inconsistencies []types.Inconsistency) {
	log := logging.GetFromContext(ctx)

	for _, i := range inconsistencies {
		metrics.Inconsistency(i.Name)

		log.Warn().
			Int("survey_id", surveyID).
			Int("deployment_id", i.Data.SimsDeploymentID).
			Str("bctw_deployment_id", i.Data.BctwDeploymentID).
			Msg(i.Message)
	}

	if len(inconsistencies) == 0 {
		return
	}

	nctx, cancel := context.WithTimeout(detach(ctx), notifyTimeout)

	r.notifications.Add(1)
	go func() {
		defer r.notifications.Done()
		defer cancel()

		for _, i := range inconsistencies {
			if err := r.notifier.Send(nctx, surveyID, i); err != nil {
				log.Error().Err(err).Int("deployment_id", i.Data.SimsDeploymentID).Msg("failed to send inconsistency notification")
			}
		}
	}()
}

func (r *reconciler) publish(ctx context.Context, msg messaging.TopicMessage) {
	if err := r.messenger.PublishOnTopic(ctx, msg); err != nil {
		log := logging.GetFromContext(ctx)
		log.Error().Err(err).Msgf("failed to publish message on topic %s", msg.TopicName())
	}
}

func (r *reconciler) validateRequest(req any) error {
	if err := r.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}
	return nil
}
