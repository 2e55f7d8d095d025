package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/repository/firestore"
	"github.com/panoptes-lab/panoptes/pkg/repository/memory"
)

var (
	// ErrProjectNotFound is returned when the referenced project does not exist
	ErrProjectNotFound = goerr.New("project not found")

	// ErrReviewNotFound is returned when the referenced review does not exist
	ErrReviewNotFound = goerr.New("review not found")

	// ErrJobNotFound is returned when a project has never been processed
	ErrJobNotFound = goerr.New("no processing job for project")

	// ErrReportNotReady is returned when no completed feedback report exists yet
	ErrReportNotReady = goerr.New("feedback report not ready")

	// ErrOntologyUnavailable aborts a processing run when no valid ontology
	// snapshot can be taken
	ErrOntologyUnavailable = goerr.New("ontology unavailable")
)

// isNotFound matches the not-found sentinel of either repository backend
func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)
}
