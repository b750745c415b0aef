package types

import "time"

type DeploymentCreated struct {
	DeploymentID     int       `json:"deploymentID"`
	BctwDeploymentID string    `json:"bctwDeploymentID"`
	SurveyID         int       `json:"surveyID"`
	Timestamp        time.Time `json:"timestamp"`
}

func (d *DeploymentCreated) ContentType() string {
	return "application/json"
}
func (d *DeploymentCreated) TopicName() string {
	return "deployment.created"
}

type DeploymentUpdated struct {
	DeploymentID     int       `json:"deploymentID"`
	BctwDeploymentID string    `json:"bctwDeploymentID"`
	SurveyID         int       `json:"surveyID"`
	Timestamp        time.Time `json:"timestamp"`
}

func (d *DeploymentUpdated) ContentType() string {
	return "application/json"
}
func (d *DeploymentUpdated) TopicName() string {
	return "deployment.updated"
}

type DeploymentDeleted struct {
	DeploymentID     int       `json:"deploymentID"`
	BctwDeploymentID string    `json:"bctwDeploymentID"`
	SurveyID         int       `json:"surveyID"`
	Timestamp        time.Time `json:"timestamp"`
}

func (d *DeploymentDeleted) ContentType() string {
	return "application/json"
}
func (d *DeploymentDeleted) TopicName() string {
	return "deployment.deleted"
}
