package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDeploymentNotFound = fmt.Errorf("deployment not found")
var ErrCritterNotFound = fmt.Errorf("critter not found in survey")
var ErrRepositoryError = fmt.Errorf("could not fetch data from repository")

// DeploymentRepository hands out transactions. Nothing written through a DeploymentTx is
// visible to other transactions until the caller commits it.
type DeploymentRepository interface {
	Begin(ctx context.Context) (DeploymentTx, error)
}

type DeploymentTx interface {
	ListForSurvey(ctx context.Context, surveyID int) ([]Deployment, error)
	GetByID(ctx context.Context, surveyID, deploymentID int) (Deployment, error)
	GetCritter(ctx context.Context, surveyID, critterID int) (SurveyCritter, error)

	InsertCritter(ctx context.Context, critter *SurveyCritter) error
	Insert(ctx context.Context, deployment *Deployment) error
	Update(ctx context.Context, surveyID, deploymentID int, fields DeploymentUpdate) error
	EndDeployment(ctx context.Context, surveyID, deploymentID int) (string, error)

	Commit() error
	Rollback() error
}

func NewDeploymentRepository(connect ConnectorFunc) (DeploymentRepository, error) {
	impl, err := connect()
	if err != nil {
		return nil, err
	}

	err = impl.AutoMigrate(&SurveyCritter{}, &Deployment{})
	if err != nil {
		return nil, err
	}

	return &deploymentRepository{
		db: impl,
	}, nil
}

type deploymentRepository struct {
	db *gorm.DB
}

func (r *deploymentRepository) Begin(ctx context.Context) (DeploymentTx, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	return &deploymentTx{tx: tx}, nil
}

type deploymentTx struct {
	tx *gorm.DB

	mu     sync.Mutex
	closed bool
}

func (t *deploymentTx) db(ctx context.Context) *gorm.DB {
	return t.tx.WithContext(ctx)
}

func (t *deploymentTx) crittersInSurvey(ctx context.Context, surveyID int) *gorm.DB {
	return t.db(ctx).Model(&SurveyCritter{}).Select("critter_id").Where("survey_id = ?", surveyID)
}

func (t *deploymentTx) ListForSurvey(ctx context.Context, surveyID int) ([]Deployment, error) {
	deployments := []Deployment{}

	result := t.db(ctx).
		Where("critter_id IN (?)", t.crittersInSurvey(ctx, surveyID)).
		Order("deployment_id").
		Find(&deployments)

	if result.Error != nil {
		log := logging.GetFromContext(ctx)
		log.Error().Err(result.Error).Msg("gorm error")
		return nil, ErrRepositoryError
	}

	return deployments, nil
}

func (t *deploymentTx) GetByID(ctx context.Context, surveyID, deploymentID int) (Deployment, error) {
	d := Deployment{}

	result := t.db(ctx).
		Where("deployment_id = ? AND critter_id IN (?)", deploymentID, t.crittersInSurvey(ctx, surveyID)).
		First(&d)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Deployment{}, ErrDeploymentNotFound
		}

		log := logging.GetFromContext(ctx)
		log.Error().Err(result.Error).Msg("gorm error")

		return Deployment{}, ErrRepositoryError
	}

	return d, nil
}

func (t *deploymentTx) GetCritter(ctx context.Context, surveyID, critterID int) (SurveyCritter, error) {
	c := SurveyCritter{}

	result := t.db(ctx).Where(&SurveyCritter{CritterID: critterID, SurveyID: surveyID}).First(&c)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return SurveyCritter{}, ErrCritterNotFound
		}

		log := logging.GetFromContext(ctx)
		log.Error().Err(result.Error).Msg("gorm error")

		return SurveyCritter{}, ErrRepositoryError
	}

	return c, nil
}

func (t *deploymentTx) InsertCritter(ctx context.Context, critter *SurveyCritter) error {
	return t.db(ctx).Create(critter).Error
}

func (t *deploymentTx) Insert(ctx context.Context, deployment *Deployment) error {
	if deployment.BctwDeploymentID == "" {
		return fmt.Errorf("deployment is missing an external deployment id")
	}

	if err := deployment.Validate(); err != nil {
		return err
	}

	return t.db(ctx).Omit(clause.Associations).Create(deployment).Error
}

func (t *deploymentTx) Update(ctx context.Context, surveyID, deploymentID int, fields DeploymentUpdate) error {
	d, err := t.GetByID(ctx, surveyID, deploymentID)
	if err != nil {
		return err
	}

	d.CritterbaseStartCaptureID = fields.CritterbaseStartCaptureID
	d.CritterbaseEndCaptureID = fields.CritterbaseEndCaptureID
	d.CritterbaseEndMortalityID = fields.CritterbaseEndMortalityID

	if err := d.Validate(); err != nil {
		return err
	}

	return t.db(ctx).Omit(clause.Associations).Save(&d).Error
}

func (t *deploymentTx) EndDeployment(ctx context.Context, surveyID, deploymentID int) (string, error) {
	d, err := t.GetByID(ctx, surveyID, deploymentID)
	if err != nil {
		return "", err
	}

	result := t.db(ctx).Delete(&d)
	if result.Error != nil {
		return "", result.Error
	}

	if result.RowsAffected == 0 {
		return "", ErrDeploymentNotFound
	}

	return d.BctwDeploymentID, nil
}

// Commit fails with gorm.ErrInvalidTransaction once the transaction has been committed or
// rolled back.
func (t *deploymentTx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return gorm.ErrInvalidTransaction
	}

	t.closed = true
	return t.tx.Commit().Error
}

// Rollback is a no-op once the transaction has been committed or rolled back, so it is
// safe to defer right after Begin.
func (t *deploymentTx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true
	return t.tx.Rollback().Error
}
