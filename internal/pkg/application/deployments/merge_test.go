package deployments

import (
	"testing"
	"time"

	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/telemetry-deployments/pkg/types"
	"github.com/matryer/is"
)

func TestMergeClassifiesEveryLocalDeployment(t *testing.T) {
	is := is.New(t)

	local := []database.Deployment{
		{DeploymentID: 1, CritterID: 10, BctwDeploymentID: "one"},
		{DeploymentID: 2, CritterID: 10, BctwDeploymentID: "none"},
		{DeploymentID: 3, CritterID: 11, BctwDeploymentID: "many"},
	}

	past := now.Add(-time.Minute)

	closed := activeRecord("none")
	closed.ValidTo = &past

	external := []types.ExternalDeployment{
		activeRecord("one"),
		closed,
		activeRecord("many"),
		activeRecord("many"),
	}

	result := merge(local, external, now)

	is.Equal(len(result.Deployments), 1)
	is.Equal(result.Deployments[0].DeploymentID, 1)
	is.Equal(result.Deployments[0].CritterID, 10)

	is.Equal(len(result.BadDeployments), 2)
	is.Equal(result.BadDeployments[0].Name, types.NoActiveDeploymentFound)
	is.Equal(result.BadDeployments[0].Data, types.InconsistencyData{SimsDeploymentID: 2, BctwDeploymentID: "none"})
	is.Equal(result.BadDeployments[1].Name, types.MultipleActiveDeploymentsFound)
	is.Equal(result.BadDeployments[1].Data, types.InconsistencyData{SimsDeploymentID: 3, BctwDeploymentID: "many"})
}

func TestThatRecordClosingAtTheInstantIsNotActive(t *testing.T) {
	is := is.New(t)

	e := activeRecord("one")
	validTo := now
	e.ValidTo = &validTo

	result := merge([]database.Deployment{{DeploymentID: 1, BctwDeploymentID: "one"}}, []types.ExternalDeployment{e}, now)

	is.Equal(len(result.Deployments), 0)
	is.Equal(result.BadDeployments[0].Name, types.NoActiveDeploymentFound)
}

func TestThatMergedDeploymentKeepsLocalReferences(t *testing.T) {
	is := is.New(t)

	endCapture := "e1d4a7c0-2b7e-4c8e-9b1a-3f5e6d7c8b9a"
	d := database.Deployment{
		DeploymentID:              7,
		CritterID:                 42,
		BctwDeploymentID:          "one",
		CritterbaseStartCaptureID: "s1d4a7c0-2b7e-4c8e-9b1a-3f5e6d7c8b9a",
		CritterbaseEndCaptureID:   &endCapture,
	}

	result := merge([]database.Deployment{d}, []types.ExternalDeployment{activeRecord("one")}, now)

	is.Equal(len(result.Deployments), 1)
	m := result.Deployments[0]
	is.Equal(m.CritterID, 42)
	is.Equal(m.CritterbaseStartCaptureID, d.CritterbaseStartCaptureID)
	is.Equal(*m.CritterbaseEndCaptureID, endCapture)
	is.Equal(m.DeviceMake, "Vectronic")
	is.True(m.AttachmentStart.Equal(captureDate))
}
