package deployments

import (
	"fmt"
	"time"

	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/telemetry-deployments/pkg/types"
	"github.com/samber/lo"
)

// merge joins local deployments with the registry records that are active at the given
// instant. A local deployment that matches zero or several active records is reported as
// an inconsistency instead of being merged.
func merge(local []database.Deployment, external []types.ExternalDeployment, at time.Time) types.DeploymentList {
	active := lo.GroupBy(
		lo.Filter(external, func(e types.ExternalDeployment, _ int) bool { return e.IsActive(at) }),
		func(e types.ExternalDeployment) string { return e.DeploymentID },
	)

	result := types.DeploymentList{
		Deployments:    []types.MergedDeployment{},
		BadDeployments: []types.Inconsistency{},
	}

	for _, d := range local {
		matches := active[d.BctwDeploymentID]

		switch len(matches) {
		case 0:
			result.BadDeployments = append(result.BadDeployments, newInconsistency(types.NoActiveDeploymentFound,
				fmt.Sprintf("no active deployment found in the device registry for deployment %d", d.DeploymentID), d))
		case 1:
			result.Deployments = append(result.Deployments, mergeOne(d, matches[0]))
		default:
			result.BadDeployments = append(result.BadDeployments, newInconsistency(types.MultipleActiveDeploymentsFound,
				fmt.Sprintf("%d active deployments found in the device registry for deployment %d", len(matches), d.DeploymentID), d))
		}
	}

	return result
}

func mergeOne(d database.Deployment, e types.ExternalDeployment) types.MergedDeployment {
	return types.MergedDeployment{
		DeploymentID:              d.DeploymentID,
		CritterID:                 d.CritterID,
		BctwDeploymentID:          d.BctwDeploymentID,
		CritterbaseStartCaptureID: d.CritterbaseStartCaptureID,
		CritterbaseEndCaptureID:   d.CritterbaseEndCaptureID,
		CritterbaseEndMortalityID: d.CritterbaseEndMortalityID,

		CritterbaseCritterID: e.CritterID,
		AssignmentID:         e.AssignmentID,
		CollarID:             e.CollarID,
		DeviceID:             e.DeviceID,
		DeviceMake:           e.DeviceMake,
		DeviceModel:          e.DeviceModel,
		Frequency:            e.Frequency,
		FrequencyUnit:        e.FrequencyUnit,
		AttachmentStart:      e.AttachmentStart,
		AttachmentEnd:        e.AttachmentEnd,
	}
}

func newInconsistency(name, message string, d database.Deployment) types.Inconsistency {
	return types.Inconsistency{
		Name:    name,
		Message: message,
		Data: types.InconsistencyData{
			SimsDeploymentID: d.DeploymentID,
			BctwDeploymentID: d.BctwDeploymentID,
		},
	}
}

func toLocalDeployment(d database.Deployment) types.LocalDeployment {
	return types.LocalDeployment{
		DeploymentID:              d.DeploymentID,
		CritterID:                 d.CritterID,
		BctwDeploymentID:          d.BctwDeploymentID,
		CritterbaseStartCaptureID: d.CritterbaseStartCaptureID,
		CritterbaseEndCaptureID:   d.CritterbaseEndCaptureID,
		CritterbaseEndMortalityID: d.CritterbaseEndMortalityID,
	}
}
