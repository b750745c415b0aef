package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrConflictingEndReferences = fmt.Errorf("a deployment can end with a capture or a mortality, not both")

type SurveyCritter struct {
	CritterID            int    `gorm:"column:critter_id;primaryKey;autoIncrement"`
	SurveyID             int    `gorm:"column:survey_id;not null;index"`
	CritterbaseCritterID string `gorm:"column:critterbase_critter_id;not null"`

	Deployments []Deployment `gorm:"foreignKey:CritterID;references:CritterID"`
}

func (SurveyCritter) TableName() string {
	return "critter"
}

type Deployment struct {
	DeploymentID              int     `gorm:"column:deployment_id;primaryKey;autoIncrement"`
	CritterID                 int     `gorm:"column:critter_id;not null;index"`
	BctwDeploymentID          string  `gorm:"column:bctw_deployment_id;not null;uniqueIndex"`
	CritterbaseStartCaptureID string  `gorm:"column:critterbase_start_capture_id;not null"`
	CritterbaseEndCaptureID   *string `gorm:"column:critterbase_end_capture_id"`
	CritterbaseEndMortalityID *string `gorm:"column:critterbase_end_mortality_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Deployment) TableName() string {
	return "deployment"
}

func (d *Deployment) Validate() error {
	if d.CritterbaseEndCaptureID != nil && d.CritterbaseEndMortalityID != nil {
		return ErrConflictingEndReferences
	}
	return nil
}

func (d *Deployment) BeforeSave(tx *gorm.DB) error {
	return d.Validate()
}

// DeploymentUpdate replaces the capture and mortality references of a deployment.
type DeploymentUpdate struct {
	CritterbaseStartCaptureID string
	CritterbaseEndCaptureID   *string
	CritterbaseEndMortalityID *string
}
