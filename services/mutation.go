package services

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/dcode-github/realestate_console/storage"
	"github.com/dcode-github/realestate_console/utils"
)

// Stage is a step of a property mutation. Any failure before StageCommitted
// ends in StageRolledBack with nothing visible to readers.
type Stage string

const (
	StageStarted            Stage = "Started"
	StageValidated          Stage = "Validated"
	StagePersisted          Stage = "Persisted"
	StageCitiesEnumerated   Stage = "CitiesEnumerated"
	StageCountsRecalculated Stage = "CountsRecalculated"
	StageCommitted          Stage = "Committed"
	StageRolledBack         Stage = "RolledBack"
)

type mutation struct {
	stage  Stage
	logger logrus.FieldLogger
}

func newMutation(logger logrus.FieldLogger, op string) *mutation {
	return &mutation{
		stage:  StageStarted,
		logger: logger.WithField("mutation", op),
	}
}

func (m *mutation) advance(s Stage) {
	m.stage = s
	m.logger.WithField("stage", s).Debug("Mutation advanced")
}

// rollback records the failure and maps it to an AppError. AppErrors raised
// inside the transaction keep their own mapping.
func (m *mutation) rollback(err error, message string) error {
	failedAt := m.stage
	m.stage = StageRolledBack
	m.logger.WithError(err).WithField("failedAfter", failedAt).Warn("Mutation rolled back")
	return asAppError(err, message)
}

// uploadFailure maps an error from saving uploads.
func uploadFailure(err error) error {
	if errors.Is(err, storage.ErrNotImage) {
		return utils.ValidationError(err.Error(), nil)
	}
	return utils.PersistenceError("Failed to store uploaded images", err)
}
