package deployments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/telemetry-deployments/internal/pkg/application/notifications"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/bctw"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/critterbase"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/telemetry-deployments/pkg/types"
	"github.com/google/uuid"
	"github.com/matryer/is"
)

var now = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
var captureDate = time.Date(2023, 2, 14, 8, 30, 0, 0, time.UTC)

const critterbaseCritterID string = "c6b1a5a4-7cc3-4ad2-8f3e-2f2b9f1ab2c1"

func TestCreateDeploymentUsesTheSameJoinKeyOnBothSides(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)

	deps.registry.CreateDeploymentFunc = func(ctx context.Context, req bctw.DeployDeviceRequest) (types.ExternalDeployment, error) {
		return activeRecord(req.DeploymentID), nil
	}

	local, err := r.CreateDeployment(ctx, 1, critter.CritterID, createRequest())
	is.NoErr(err)

	is.Equal(len(deps.registry.CreateDeploymentCalls()), 1)
	req := deps.registry.CreateDeploymentCalls()[0].Req

	is.Equal(local.BctwDeploymentID, req.DeploymentID)
	_, err = uuid.Parse(req.DeploymentID)
	is.NoErr(err)

	is.Equal(req.CritterID, critterbaseCritterID)
	is.True(req.AttachmentStart.Equal(captureDate))
	is.True(req.AttachmentEnd == nil)
	is.Equal(req.DeviceID, 123)

	stored := listLocal(ctx, is, deps.repo, 1)
	is.Equal(len(stored), 1)
	is.Equal(stored[0].BctwDeploymentID, req.DeploymentID)

	is.Equal(len(deps.messenger.PublishOnTopicCalls()), 1)
	is.Equal(deps.messenger.PublishOnTopicCalls()[0].Message.TopicName(), "deployment.created")
}

func TestThatFailedExternalCreateRollsBackLocalInsert(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)

	registryErr := fmt.Errorf("%w: connection refused", bctw.ErrRegistryUnavailable)
	deps.registry.CreateDeploymentFunc = func(ctx context.Context, req bctw.DeployDeviceRequest) (types.ExternalDeployment, error) {
		return types.ExternalDeployment{}, registryErr
	}

	_, err := r.CreateDeployment(ctx, 1, critter.CritterID, createRequest())
	is.True(errors.Is(err, bctw.ErrRegistryUnavailable))

	is.Equal(len(listLocal(ctx, is, deps.repo, 1)), 0)
	is.Equal(len(deps.registry.DeleteDeploymentCalls()), 0)
	is.Equal(len(deps.messenger.PublishOnTopicCalls()), 0)
}

func TestThatFailedCaptureLookupRollsBackLocalInsert(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)

	deps.ledger.GetCaptureFunc = func(ctx context.Context, captureID string) (critterbase.Capture, error) {
		return critterbase.Capture{}, fmt.Errorf("%w: i/o timeout", critterbase.ErrLedgerUnavailable)
	}

	_, err := r.CreateDeployment(ctx, 1, critter.CritterID, createRequest())
	is.True(errors.Is(err, critterbase.ErrLedgerUnavailable))

	is.Equal(len(listLocal(ctx, is, deps.repo, 1)), 0)
	is.Equal(len(deps.registry.CreateDeploymentCalls()), 0)
}

func TestThatFailedCommitDeletesTheExternalDeployment(t *testing.T) {
	is, ctx, r, deps := testSetup(t, func(repo database.DeploymentRepository) database.DeploymentRepository {
		return &failingCommitRepository{DeploymentRepository: repo}
	})
	critter := seedCritter(ctx, is, deps.repo, 1, 0)

	deps.registry.CreateDeploymentFunc = func(ctx context.Context, req bctw.DeployDeviceRequest) (types.ExternalDeployment, error) {
		return activeRecord(req.DeploymentID), nil
	}
	deps.registry.DeleteDeploymentFunc = func(ctx context.Context, deploymentID string) error {
		return nil
	}

	_, err := r.CreateDeployment(ctx, 1, critter.CritterID, createRequest())
	is.True(errors.Is(err, errCommitFailed))

	is.Equal(len(deps.registry.DeleteDeploymentCalls()), 1)
	is.Equal(deps.registry.DeleteDeploymentCalls()[0].DeploymentID, deps.registry.CreateDeploymentCalls()[0].Req.DeploymentID)
	is.Equal(len(deps.messenger.PublishOnTopicCalls()), 0)
}

func TestThatCompensationFailureDoesNotHideTheOriginalError(t *testing.T) {
	is, ctx, r, deps := testSetup(t, func(repo database.DeploymentRepository) database.DeploymentRepository {
		return &failingCommitRepository{DeploymentRepository: repo}
	})
	critter := seedCritter(ctx, is, deps.repo, 1, 0)

	deps.registry.CreateDeploymentFunc = func(ctx context.Context, req bctw.DeployDeviceRequest) (types.ExternalDeployment, error) {
		return activeRecord(req.DeploymentID), nil
	}
	deps.registry.DeleteDeploymentFunc = func(ctx context.Context, deploymentID string) error {
		return bctw.ErrRegistryUnavailable
	}

	_, err := r.CreateDeployment(ctx, 1, critter.CritterID, createRequest())
	is.True(errors.Is(err, errCommitFailed))
	is.True(errors.Is(err, bctw.ErrRegistryUnavailable))
}

func TestCreateDeploymentWithMortality(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)

	died := time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC)
	deps.ledger.GetMortalityFunc = func(ctx context.Context, mortalityID string) (critterbase.Mortality, error) {
		return critterbase.Mortality{MortalityID: mortalityID, MortalityTimestamp: died}, nil
	}
	deps.registry.CreateDeploymentFunc = func(ctx context.Context, req bctw.DeployDeviceRequest) (types.ExternalDeployment, error) {
		return activeRecord(req.DeploymentID), nil
	}

	req := createRequest()
	mortalityID := uuid.NewString()
	req.CritterbaseEndMortalityID = &mortalityID

	local, err := r.CreateDeployment(ctx, 1, critter.CritterID, req)
	is.NoErr(err)
	is.Equal(*local.CritterbaseEndMortalityID, mortalityID)

	is.True(deps.registry.CreateDeploymentCalls()[0].Req.AttachmentEnd.Equal(died))
}

func TestThatConflictingEndReferencesAreRejectedBeforeAnyCall(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)

	req := createRequest()
	endCapture := uuid.NewString()
	mortality := uuid.NewString()
	req.CritterbaseEndCaptureID = &endCapture
	req.CritterbaseEndMortalityID = &mortality

	_, err := r.CreateDeployment(ctx, 1, critter.CritterID, req)
	is.True(errors.Is(err, ErrInvalidRequest))
	is.Equal(len(deps.ledger.GetCaptureCalls()), 0)
	is.Equal(len(deps.registry.CreateDeploymentCalls()), 0)
}

func TestCreateDeploymentForCritterInOtherSurvey(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 2, 0)

	_, err := r.CreateDeployment(ctx, 1, critter.CritterID, createRequest())
	is.True(errors.Is(err, ErrCritterNotFound))
	is.Equal(len(deps.registry.CreateDeploymentCalls()), 0)
}

func TestThatPublishFailureDoesNotFailCreate(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)

	deps.registry.CreateDeploymentFunc = func(ctx context.Context, req bctw.DeployDeviceRequest) (types.ExternalDeployment, error) {
		return activeRecord(req.DeploymentID), nil
	}
	deps.messenger.PublishOnTopicFunc = func(ctx context.Context, message messaging.TopicMessage) error {
		return errors.New("channel closed")
	}

	_, err := r.CreateDeployment(ctx, 1, critter.CritterID, createRequest())
	is.NoErr(err)
	is.Equal(len(listLocal(ctx, is, deps.repo, 1)), 1)
}

func TestUpdateDeploymentKeepsTheJoinKey(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	d := seedDeployment(ctx, is, deps.repo, critter.CritterID, "444")

	deps.registry.UpdateDeploymentFunc = func(ctx context.Context, req bctw.UpdateDeploymentRequest) ([]types.ExternalDeployment, error) {
		return []types.ExternalDeployment{activeRecord(req.DeploymentID)}, nil
	}

	endCapture := uuid.NewString()
	err := r.UpdateDeployment(ctx, 1, d.DeploymentID, types.UpdateDeploymentRequest{
		CritterbaseStartCaptureID: d.CritterbaseStartCaptureID,
		CritterbaseEndCaptureID:   &endCapture,
	})
	is.NoErr(err)

	is.Equal(len(deps.registry.UpdateDeploymentCalls()), 1)
	req := deps.registry.UpdateDeploymentCalls()[0].Req
	is.Equal(req.DeploymentID, "444")
	is.True(req.AttachmentEnd != nil)

	stored := listLocal(ctx, is, deps.repo, 1)
	is.Equal(stored[0].BctwDeploymentID, "444")
	is.Equal(*stored[0].CritterbaseEndCaptureID, endCapture)

	is.Equal(deps.messenger.PublishOnTopicCalls()[0].Message.TopicName(), "deployment.updated")
}

func TestThatFailedExternalUpdateRollsBackLocalUpdate(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	d := seedDeployment(ctx, is, deps.repo, critter.CritterID, "444")

	deps.registry.UpdateDeploymentFunc = func(ctx context.Context, req bctw.UpdateDeploymentRequest) ([]types.ExternalDeployment, error) {
		return nil, errors.New("registry said no")
	}

	endCapture := uuid.NewString()
	err := r.UpdateDeployment(ctx, 1, d.DeploymentID, types.UpdateDeploymentRequest{
		CritterbaseStartCaptureID: uuid.NewString(),
		CritterbaseEndCaptureID:   &endCapture,
	})
	is.True(err != nil)

	stored := listLocal(ctx, is, deps.repo, 1)
	is.Equal(stored[0].CritterbaseStartCaptureID, d.CritterbaseStartCaptureID)
	is.True(stored[0].CritterbaseEndCaptureID == nil)
}

func TestUpdateUnknownDeployment(t *testing.T) {
	is, ctx, r, _ := testSetup(t, nil)

	err := r.UpdateDeployment(ctx, 1, 4711, types.UpdateDeploymentRequest{
		CritterbaseStartCaptureID: uuid.NewString(),
	})
	is.True(errors.Is(err, ErrDeploymentNotFound))
}

func TestDeleteDeploymentsInSurvey(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	d1 := seedDeployment(ctx, is, deps.repo, critter.CritterID, "111")
	d2 := seedDeployment(ctx, is, deps.repo, critter.CritterID, "222")
	seedDeployment(ctx, is, deps.repo, critter.CritterID, "333")

	deps.registry.DeleteDeploymentFunc = func(ctx context.Context, deploymentID string) error {
		return nil
	}

	err := r.DeleteDeploymentsInSurvey(ctx, 1, []int{d1.DeploymentID, d2.DeploymentID})
	is.NoErr(err)

	is.Equal(len(deps.registry.DeleteDeploymentCalls()), 2)

	stored := listLocal(ctx, is, deps.repo, 1)
	is.Equal(len(stored), 1)
	is.Equal(stored[0].BctwDeploymentID, "333")

	is.Equal(len(deps.messenger.PublishOnTopicCalls()), 2)
	is.Equal(deps.messenger.PublishOnTopicCalls()[0].Message.TopicName(), "deployment.deleted")
}

func TestThatOneFailedExternalDeleteRollsBackTheWholeBatch(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	d1 := seedDeployment(ctx, is, deps.repo, critter.CritterID, "111")
	d2 := seedDeployment(ctx, is, deps.repo, critter.CritterID, "222")
	d3 := seedDeployment(ctx, is, deps.repo, critter.CritterID, "333")

	deps.registry.DeleteDeploymentFunc = func(ctx context.Context, deploymentID string) error {
		if deploymentID == "222" {
			return fmt.Errorf("%w: connection reset by peer", bctw.ErrRegistryUnavailable)
		}
		return nil
	}

	err := r.DeleteDeploymentsInSurvey(ctx, 1, []int{d1.DeploymentID, d2.DeploymentID, d3.DeploymentID})
	is.True(errors.Is(err, bctw.ErrRegistryUnavailable))

	is.Equal(len(listLocal(ctx, is, deps.repo, 1)), 3)
	is.Equal(len(deps.messenger.PublishOnTopicCalls()), 0)
}

func TestThatLocalClosesInABatchNeverOverlap(t *testing.T) {
	var tracked *trackingTx
	is, ctx, r, deps := testSetup(t, func(repo database.DeploymentRepository) database.DeploymentRepository {
		return &trackingRepository{DeploymentRepository: repo, onBegin: func(tx *trackingTx) { tracked = tx }}
	})
	critter := seedCritter(ctx, is, deps.repo, 1, 0)

	ids := []int{}
	for i := 0; i < 10; i++ {
		d := seedDeployment(ctx, is, deps.repo, critter.CritterID, fmt.Sprintf("bctw-%d", i))
		ids = append(ids, d.DeploymentID)
	}

	deps.registry.DeleteDeploymentFunc = func(ctx context.Context, deploymentID string) error {
		if !tracked.hasEnded(deploymentID) {
			return fmt.Errorf("deployment %s deleted from registry before it was closed locally", deploymentID)
		}
		return nil
	}

	err := r.DeleteDeploymentsInSurvey(ctx, 1, ids)
	is.NoErr(err)

	is.Equal(tracked.maxInFlight(), int32(1))
	is.Equal(len(deps.registry.DeleteDeploymentCalls()), 10)
	is.Equal(len(listLocal(ctx, is, deps.repo, 1)), 0)
}

func TestDeleteDeploymentInOtherSurvey(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 2, 0)
	d := seedDeployment(ctx, is, deps.repo, critter.CritterID, "111")

	err := r.DeleteDeployment(ctx, 1, d.DeploymentID)
	is.True(errors.Is(err, ErrDeploymentNotFound))
	is.Equal(len(deps.registry.DeleteDeploymentCalls()), 0)
	is.Equal(len(listLocal(ctx, is, deps.repo, 2)), 1)
}

func TestDeleteWithEmptyBatchIsInvalid(t *testing.T) {
	is, ctx, r, _ := testSetup(t, nil)

	err := r.DeleteDeploymentsInSurvey(ctx, 1, []int{})
	is.True(errors.Is(err, ErrInvalidRequest))
}

func TestListMergedForEmptySurveyMakesNoExternalCall(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)

	result, err := r.ListMergedForSurvey(ctx, 1)
	is.NoErr(err)

	is.Equal(len(deps.registry.GetDeploymentsByIDsCalls()), 0)
	is.True(result.Deployments != nil)
	is.Equal(len(result.Deployments), 0)
	is.True(result.BadDeployments != nil)
	is.Equal(len(result.BadDeployments), 0)
}

func TestThatLocalFieldsTakePrecedenceWhenMerging(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 42)
	seedDeployment(ctx, is, deps.repo, critter.CritterID, "444")

	deps.registry.GetDeploymentsByIDsFunc = func(ctx context.Context, ids []string) ([]types.ExternalDeployment, error) {
		e := activeRecord("444")
		e.CritterID = "uuid-X"
		return []types.ExternalDeployment{e}, nil
	}

	result, err := r.ListMergedForSurvey(ctx, 1)
	is.NoErr(err)

	is.Equal(len(result.Deployments), 1)
	is.Equal(result.Deployments[0].CritterID, 42)
	is.Equal(result.Deployments[0].CritterbaseCritterID, "uuid-X")
	is.Equal(result.Deployments[0].DeviceID, 123)
	is.Equal(len(result.BadDeployments), 0)
	is.Equal(deps.registry.GetDeploymentsByIDsCalls()[0].DeploymentIDs, []string{"444"})
}

func TestThatMissingExternalDeploymentIsReported(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	d := seedDeployment(ctx, is, deps.repo, critter.CritterID, "444")

	deps.registry.GetDeploymentsByIDsFunc = func(ctx context.Context, ids []string) ([]types.ExternalDeployment, error) {
		return []types.ExternalDeployment{activeRecord("444_no_match")}, nil
	}

	result, err := r.ListMergedForSurvey(ctx, 1)
	is.NoErr(err)

	is.Equal(len(result.Deployments), 0)
	is.Equal(len(result.BadDeployments), 1)
	is.Equal(result.BadDeployments[0].Name, types.NoActiveDeploymentFound)
	is.Equal(result.BadDeployments[0].Data.SimsDeploymentID, d.DeploymentID)
	is.Equal(result.BadDeployments[0].Data.BctwDeploymentID, "444")

	r.notifications.Wait()
	is.Equal(len(deps.notifier.SendCalls()), 1)
	is.Equal(deps.notifier.SendCalls()[0].SurveyID, 1)
}

func TestThatMultipleActiveExternalDeploymentsAreReported(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	seedDeployment(ctx, is, deps.repo, critter.CritterID, "444")

	deps.registry.GetDeploymentsByIDsFunc = func(ctx context.Context, ids []string) ([]types.ExternalDeployment, error) {
		return []types.ExternalDeployment{activeRecord("444"), activeRecord("444")}, nil
	}

	result, err := r.ListMergedForSurvey(ctx, 1)
	is.NoErr(err)

	is.Equal(len(result.Deployments), 0)
	is.Equal(len(result.BadDeployments), 1)
	is.Equal(result.BadDeployments[0].Name, types.MultipleActiveDeploymentsFound)
}

func TestThatSoftDeletedExternalRecordsAreIgnored(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	seedDeployment(ctx, is, deps.repo, critter.CritterID, "444")

	deps.registry.GetDeploymentsByIDsFunc = func(ctx context.Context, ids []string) ([]types.ExternalDeployment, error) {
		closed := activeRecord("444")
		validTo := now.Add(-time.Hour)
		closed.ValidTo = &validTo
		closed.DeviceID = 999

		closesLater := activeRecord("444")
		validToLater := now.Add(time.Hour)
		closesLater.ValidTo = &validToLater

		return []types.ExternalDeployment{closed, closesLater}, nil
	}

	result, err := r.ListMergedForSurvey(ctx, 1)
	is.NoErr(err)

	is.Equal(len(result.Deployments), 1)
	is.Equal(result.Deployments[0].DeviceID, 123)
}

func TestThatNotifierFailureDoesNotFailTheRead(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	seedDeployment(ctx, is, deps.repo, critter.CritterID, "444")

	deps.registry.GetDeploymentsByIDsFunc = func(ctx context.Context, ids []string) ([]types.ExternalDeployment, error) {
		return []types.ExternalDeployment{}, nil
	}
	deps.notifier.SendFunc = func(ctx context.Context, surveyID int, inconsistency types.Inconsistency) error {
		return errors.New("notification service is down")
	}

	result, err := r.ListMergedForSurvey(ctx, 1)
	is.NoErr(err)
	is.Equal(len(result.BadDeployments), 1)

	r.notifications.Wait()
	is.Equal(len(deps.notifier.SendCalls()), 1)
}

func TestThatBlockedNotifierDoesNotDelayTheRead(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	seedDeployment(ctx, is, deps.repo, critter.CritterID, "444")

	deps.registry.GetDeploymentsByIDsFunc = func(ctx context.Context, ids []string) ([]types.ExternalDeployment, error) {
		return []types.ExternalDeployment{}, nil
	}

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	deps.notifier.SendFunc = func(ctx context.Context, surveyID int, inconsistency types.Inconsistency) error {
		entered <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}

	requestCtx, cancel := context.WithCancel(ctx)

	start := time.Now()
	result, err := r.ListMergedForSurvey(requestCtx, 1)
	is.NoErr(err)
	is.Equal(len(result.BadDeployments), 1)
	is.True(time.Since(start) < time.Second)

	cancel()
	<-entered

	is.Equal(len(deps.notifier.SendCalls()), 1)
	is.NoErr(deps.notifier.SendCalls()[0].Ctx.Err())

	close(release)
	r.notifications.Wait()
}

func TestThatRegistryFailureFailsTheRead(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	seedDeployment(ctx, is, deps.repo, critter.CritterID, "444")

	deps.registry.GetDeploymentsByIDsFunc = func(ctx context.Context, ids []string) ([]types.ExternalDeployment, error) {
		return nil, bctw.ErrRegistryUnavailable
	}

	_, err := r.ListMergedForSurvey(ctx, 1)
	is.True(errors.Is(err, bctw.ErrRegistryUnavailable))
}

func TestGetMerged(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	good := seedDeployment(ctx, is, deps.repo, critter.CritterID, "444")
	bad := seedDeployment(ctx, is, deps.repo, critter.CritterID, "555")

	deps.registry.GetDeploymentsByIDsFunc = func(ctx context.Context, ids []string) ([]types.ExternalDeployment, error) {
		if ids[0] == "444" {
			return []types.ExternalDeployment{activeRecord("444")}, nil
		}
		return []types.ExternalDeployment{}, nil
	}

	result, err := r.GetMerged(ctx, 1, good.DeploymentID)
	is.NoErr(err)
	is.True(result.Deployment != nil)
	is.True(result.BadDeployment == nil)
	is.Equal(result.Deployment.DeploymentID, good.DeploymentID)

	result, err = r.GetMerged(ctx, 1, bad.DeploymentID)
	is.NoErr(err)
	is.True(result.Deployment == nil)
	is.Equal(result.BadDeployment.Name, types.NoActiveDeploymentFound)

	_, err = r.GetMerged(ctx, 2, good.DeploymentID)
	is.True(errors.Is(err, ErrDeploymentNotFound))
}

func TestListTelemetryForEmptySurveyMakesNoExternalCall(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)

	points, err := r.ListTelemetryForSurvey(ctx, 1, now.Add(-24*time.Hour), now)
	is.NoErr(err)
	is.Equal(len(points), 0)
	is.Equal(len(deps.registry.GetTelemetryCalls()), 0)
}

func TestListTelemetryForSurvey(t *testing.T) {
	is, ctx, r, deps := testSetup(t, nil)
	critter := seedCritter(ctx, is, deps.repo, 1, 0)
	seedDeployment(ctx, is, deps.repo, critter.CritterID, "444")
	seedDeployment(ctx, is, deps.repo, critter.CritterID, "555")

	deps.registry.GetTelemetryFunc = func(ctx context.Context, ids []string, start, end time.Time) ([]types.TelemetryPoint, error) {
		return []types.TelemetryPoint{{DeploymentID: "444"}, {DeploymentID: "555"}}, nil
	}

	points, err := r.ListTelemetryForSurvey(ctx, 1, now.Add(-24*time.Hour), now)
	is.NoErr(err)
	is.Equal(len(points), 2)
	is.Equal(len(deps.registry.GetTelemetryCalls()[0].DeploymentIDs), 2)

	_, err = r.ListTelemetryForSurvey(ctx, 1, now, now.Add(-time.Hour))
	is.True(errors.Is(err, ErrInvalidRequest))
}

type testDeps struct {
	repo      database.DeploymentRepository
	registry  *bctw.ClientMock
	ledger    *critterbase.ClientMock
	messenger *messaging.MsgContextMock
	notifier  *notifications.NotifierMock
}

func testSetup(t *testing.T, wrap func(database.DeploymentRepository) database.DeploymentRepository) (*is.I, context.Context, *reconciler, *testDeps) {
	is := is.New(t)
	ctx := context.Background()

	repo, err := database.NewDeploymentRepository(database.NewSQLiteConnector(ctx))
	is.NoErr(err)

	deps := &testDeps{
		repo:     repo,
		registry: &bctw.ClientMock{},
		ledger: &critterbase.ClientMock{
			GetCaptureFunc: func(ctx context.Context, captureID string) (critterbase.Capture, error) {
				return critterbase.Capture{CaptureID: captureID, CritterID: critterbaseCritterID, CaptureDate: captureDate}, nil
			},
		},
		messenger: &messaging.MsgContextMock{
			PublishOnTopicFunc: func(ctx context.Context, message messaging.TopicMessage) error {
				return nil
			},
		},
		notifier: &notifications.NotifierMock{
			SendFunc: func(ctx context.Context, surveyID int, inconsistency types.Inconsistency) error {
				return nil
			},
		},
	}

	if wrap != nil {
		repo = wrap(repo)
	}

	r := newReconciler(repo, deps.registry, deps.ledger, deps.messenger, deps.notifier)
	r.now = func() time.Time { return now }

	return is, ctx, r, deps
}

func seedCritter(ctx context.Context, is *is.I, repo database.DeploymentRepository, surveyID, critterID int) database.SurveyCritter {
	tx, err := repo.Begin(ctx)
	is.NoErr(err)
	defer tx.Rollback()

	c := database.SurveyCritter{
		CritterID:            critterID,
		SurveyID:             surveyID,
		CritterbaseCritterID: critterbaseCritterID,
	}
	is.NoErr(tx.InsertCritter(ctx, &c))
	is.NoErr(tx.Commit())

	return c
}

func seedDeployment(ctx context.Context, is *is.I, repo database.DeploymentRepository, critterID int, bctwDeploymentID string) database.Deployment {
	tx, err := repo.Begin(ctx)
	is.NoErr(err)
	defer tx.Rollback()

	d := database.Deployment{
		CritterID:                 critterID,
		BctwDeploymentID:          bctwDeploymentID,
		CritterbaseStartCaptureID: uuid.NewString(),
	}
	is.NoErr(tx.Insert(ctx, &d))
	is.NoErr(tx.Commit())

	return d
}

func listLocal(ctx context.Context, is *is.I, repo database.DeploymentRepository, surveyID int) []database.Deployment {
	tx, err := repo.Begin(ctx)
	is.NoErr(err)
	defer tx.Rollback()

	deployments, err := tx.ListForSurvey(ctx, surveyID)
	is.NoErr(err)

	return deployments
}

func createRequest() types.CreateDeploymentRequest {
	frequency := 150.05
	unit := "MHz"

	return types.CreateDeploymentRequest{
		DeviceID:                  123,
		DeviceMake:                "Vectronic",
		Frequency:                 &frequency,
		FrequencyUnit:             &unit,
		CritterbaseStartCaptureID: uuid.NewString(),
	}
}

func activeRecord(deploymentID string) types.ExternalDeployment {
	return types.ExternalDeployment{
		AssignmentID:    uuid.NewString(),
		CollarID:        uuid.NewString(),
		CritterID:       critterbaseCritterID,
		DeploymentID:    deploymentID,
		DeviceID:        123,
		DeviceMake:      "Vectronic",
		AttachmentStart: captureDate,
		ValidFrom:       captureDate,
	}
}

var errCommitFailed = errors.New("commit failed")

type failingCommitRepository struct {
	database.DeploymentRepository
}

func (f *failingCommitRepository) Begin(ctx context.Context) (database.DeploymentTx, error) {
	tx, err := f.DeploymentRepository.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &failingCommitTx{DeploymentTx: tx}, nil
}

type failingCommitTx struct {
	database.DeploymentTx
}

func (f *failingCommitTx) Commit() error {
	f.DeploymentTx.Rollback()
	return errCommitFailed
}

type trackingRepository struct {
	database.DeploymentRepository
	onBegin func(*trackingTx)
}

func (t *trackingRepository) Begin(ctx context.Context) (database.DeploymentTx, error) {
	tx, err := t.DeploymentRepository.Begin(ctx)
	if err != nil {
		return nil, err
	}

	tracked := &trackingTx{DeploymentTx: tx, ended: map[string]bool{}}
	t.onBegin(tracked)

	return tracked, nil
}

// trackingTx records which deployments have been closed and how many closes ran at once.
type trackingTx struct {
	database.DeploymentTx

	inFlight atomic.Int32
	max      atomic.Int32

	mu    sync.Mutex
	ended map[string]bool
}

func (t *trackingTx) EndDeployment(ctx context.Context, surveyID, deploymentID int) (string, error) {
	n := t.inFlight.Add(1)
	defer t.inFlight.Add(-1)

	for {
		m := t.max.Load()
		if n <= m || t.max.CompareAndSwap(m, n) {
			break
		}
	}

	time.Sleep(2 * time.Millisecond)

	bctwID, err := t.DeploymentTx.EndDeployment(ctx, surveyID, deploymentID)
	if err == nil {
		t.mu.Lock()
		t.ended[bctwID] = true
		t.mu.Unlock()
	}

	return bctwID, err
}

func (t *trackingTx) hasEnded(bctwID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ended[bctwID]
}

func (t *trackingTx) maxInFlight() int32 {
	return t.max.Load()
}
