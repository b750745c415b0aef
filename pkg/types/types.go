package types

import (
	"time"
)

// LocalDeployment is a deployment row as stored in the survey database.
type LocalDeployment struct {
	DeploymentID              int     `json:"deployment_id"`
	CritterID                 int     `json:"critter_id"`
	BctwDeploymentID          string  `json:"bctw_deployment_id"`
	CritterbaseStartCaptureID string  `json:"critterbase_start_capture_id"`
	CritterbaseEndCaptureID   *string `json:"critterbase_end_capture_id"`
	CritterbaseEndMortalityID *string `json:"critterbase_end_mortality_id"`
}

// ExternalDeployment is a deployment record as returned by the device registry. The
// registry updates records by soft deleting the old row and inserting a new one, so
// several records can share a DeploymentID.
type ExternalDeployment struct {
	AssignmentID    string     `json:"assignment_id"`
	CollarID        string     `json:"collar_id"`
	CritterID       string     `json:"critter_id"`
	DeploymentID    string     `json:"deployment_id"`
	DeviceID        int        `json:"device_id"`
	DeviceMake      string     `json:"device_make"`
	DeviceModel     *string    `json:"device_model"`
	Frequency       *float64   `json:"frequency"`
	FrequencyUnit   *string    `json:"frequency_unit"`
	AttachmentStart time.Time  `json:"attachment_start"`
	AttachmentEnd   *time.Time `json:"attachment_end"`
	ValidFrom       time.Time  `json:"valid_from"`
	ValidTo         *time.Time `json:"valid_to"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// IsActive reports whether the record has not been soft deleted at the given instant.
func (e ExternalDeployment) IsActive(at time.Time) bool {
	return e.ValidTo == nil || e.ValidTo.After(at)
}

type MergedDeployment struct {
	// local
	DeploymentID              int     `json:"deployment_id"`
	CritterID                 int     `json:"critter_id"`
	BctwDeploymentID          string  `json:"bctw_deployment_id"`
	CritterbaseStartCaptureID string  `json:"critterbase_start_capture_id"`
	CritterbaseEndCaptureID   *string `json:"critterbase_end_capture_id"`
	CritterbaseEndMortalityID *string `json:"critterbase_end_mortality_id"`

	// external
	CritterbaseCritterID string     `json:"critterbase_critter_id"`
	AssignmentID         string     `json:"assignment_id"`
	CollarID             string     `json:"collar_id"`
	DeviceID             int        `json:"device_id"`
	DeviceMake           string     `json:"device_make"`
	DeviceModel          *string    `json:"device_model"`
	Frequency            *float64   `json:"frequency"`
	FrequencyUnit        *string    `json:"frequency_unit"`
	AttachmentStart      time.Time  `json:"attachment_start"`
	AttachmentEnd        *time.Time `json:"attachment_end"`
}

const (
	NoActiveDeploymentFound        string = "NoActiveDeploymentFound"
	MultipleActiveDeploymentsFound string = "MultipleActiveDeploymentsFound"
)

type InconsistencyData struct {
	SimsDeploymentID int    `json:"sims_deployment_id"`
	BctwDeploymentID string `json:"bctw_deployment_id"`
}

// Inconsistency describes a local deployment that could not be joined with exactly one
// active record in the device registry.
type Inconsistency struct {
	Name    string            `json:"name"`
	Message string            `json:"message"`
	Data    InconsistencyData `json:"data"`
}

type DeploymentList struct {
	Deployments    []MergedDeployment `json:"deployments"`
	BadDeployments []Inconsistency    `json:"bad_deployments"`
}

type DeploymentResult struct {
	Deployment    *MergedDeployment `json:"deployment"`
	BadDeployment *Inconsistency    `json:"bad_deployment"`
}

type CreateDeploymentRequest struct {
	DeviceID                  int      `json:"device_id" validate:"required,gt=0"`
	DeviceMake                string   `json:"device_make" validate:"required"`
	DeviceModel               *string  `json:"device_model"`
	Frequency                 *float64 `json:"frequency" validate:"omitempty,gt=0"`
	FrequencyUnit             *string  `json:"frequency_unit" validate:"omitempty,oneof=Hz KHz MHz"`
	CritterbaseStartCaptureID string   `json:"critterbase_start_capture_id" validate:"required,uuid"`
	CritterbaseEndCaptureID   *string  `json:"critterbase_end_capture_id" validate:"omitempty,uuid,excluded_with=CritterbaseEndMortalityID"`
	CritterbaseEndMortalityID *string  `json:"critterbase_end_mortality_id" validate:"omitempty,uuid,excluded_with=CritterbaseEndCaptureID"`
}

type UpdateDeploymentRequest struct {
	CritterbaseStartCaptureID string  `json:"critterbase_start_capture_id" validate:"required,uuid"`
	CritterbaseEndCaptureID   *string `json:"critterbase_end_capture_id" validate:"omitempty,uuid,excluded_with=CritterbaseEndMortalityID"`
	CritterbaseEndMortalityID *string `json:"critterbase_end_mortality_id" validate:"omitempty,uuid,excluded_with=CritterbaseEndCaptureID"`
}

type DeleteDeploymentsRequest struct {
	DeploymentIDs []int `json:"deployment_ids" validate:"required,min=1,dive,gt=0"`
}

type TelemetryPoint struct {
	TelemetryID         string    `json:"telemetry_id"`
	DeploymentID        string    `json:"deployment_id"`
	CollarTransactionID string    `json:"collar_transaction_id"`
	CritterID           string    `json:"critter_id"`
	DeviceID            int       `json:"device_id"`
	Latitude            *float64  `json:"latitude"`
	Longitude           *float64  `json:"longitude"`
	Elevation           *float64  `json:"elevation"`
	Vendor              string    `json:"vendor"`
	AcquisitionDate     time.Time `json:"acquisition_date"`
}
