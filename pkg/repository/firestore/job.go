package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type jobStepDocument struct {
	Name        string    `firestore:"name"`
	CompletedAt time.Time `firestore:"completed_at"`
}

type jobDocument struct {
	ID          string            `firestore:"id"`
	ProjectID   string            `firestore:"project_id"`
	Status      string            `firestore:"status"`
	Steps       []jobStepDocument `firestore:"steps"`
	Errors      []string          `firestore:"errors,omitempty"`
	StartedAt   time.Time         `firestore:"started_at"`
	CompletedAt time.Time         `firestore:"completed_at"`
}

// runLockDocument marks the project's active job. Its document ID is the
// project ID, which gives StartRun a single contention point per project.
type runLockDocument struct {
	JobID string `firestore:"job_id"`
}

func toJobDocument(j *model.ProcessingJob) *jobDocument {
	doc := &jobDocument{
		ID:          string(j.ID),
		ProjectID:   string(j.ProjectID),
		Status:      string(j.Status),
		Errors:      j.Errors,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
	for _, step := range j.Steps {
		doc.Steps = append(doc.Steps, jobStepDocument{
			Name:        step.Name,
			CompletedAt: step.CompletedAt,
		})
	}
	return doc
}

func (d *jobDocument) toModel() *model.ProcessingJob {
	j := &model.ProcessingJob{
		ID:          types.JobID(d.ID),
		ProjectID:   types.ProjectID(d.ProjectID),
		Status:      types.ProcessingStatus(d.Status),
		Errors:      d.Errors,
		StartedAt:   d.StartedAt,
		CompletedAt: d.CompletedAt,
	}
	for _, step := range d.Steps {
		j.Steps = append(j.Steps, model.JobStep{
			Name:        step.Name,
			CompletedAt: step.CompletedAt,
		})
	}
	return j
}

type jobRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newJobRepository(client *firestore.Client) *jobRepository {
	return &jobRepository{client: client}
}

func (r *jobRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_jobs"
	}
	return "jobs"
}

func (r *jobRepository) lockCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_run_locks"
	}
	return "run_locks"
}

func (r *jobRepository) StartRun(ctx context.Context, projectID types.ProjectID) (*model.ProcessingJob, bool, error) {
	lockRef := r.client.Collection(r.lockCollection()).Doc(string(projectID))

	var (
		result  *model.ProcessingJob
		started bool
	)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		result = nil
		started = false

		lockDoc, err := tx.Get(lockRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get run lock")
		}

		if err == nil {
			var lock runLockDocument
			if err := lockDoc.DataTo(&lock); err != nil {
				return goerr.Wrap(err, "failed to unmarshal run lock")
			}

			jobRef := r.client.Collection(r.collection()).Doc(lock.JobID)
			jobDoc, err := tx.Get(jobRef)
			if err != nil && status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get locked job")
			}
			if err == nil {
				var jd jobDocument
				if err := jobDoc.DataTo(&jd); err != nil {
					return goerr.Wrap(err, "failed to unmarshal job")
				}
				existing := jd.toModel()
				if existing.InFlight() {
					result = existing
					return nil
				}
			}
			// Lock points at a finished or missing job, safe to replace
		}

		job := model.NewProcessingJob(projectID)
		jobRef := r.client.Collection(r.collection()).Doc(string(job.ID))
		if err := tx.Set(jobRef, toJobDocument(job)); err != nil {
			return goerr.Wrap(err, "failed to create job")
		}
		if err := tx.Set(lockRef, &runLockDocument{JobID: string(job.ID)}); err != nil {
			return goerr.Wrap(err, "failed to set run lock")
		}

		result = job
		started = true
		return nil
	})
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to start run", goerr.V("projectID", projectID))
	}

	return result, started, nil
}

func (r *jobRepository) Get(ctx context.Context, id types.JobID) (*model.ProcessingJob, error) {
	doc, err := r.client.Collection(r.collection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "job not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get job", goerr.V("id", id))
	}

	var jd jobDocument
	if err := doc.DataTo(&jd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal job", goerr.V("id", id))
	}
	return jd.toModel(), nil
}

func (r *jobRepository) GetLatestByProject(ctx context.Context, projectID types.ProjectID) (*model.ProcessingJob, error) {
	iter := r.client.Collection(r.collection()).
		Where("project_id", "==", string(projectID)).
		Documents(ctx)
	defer iter.Stop()

	var latest *model.ProcessingJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate jobs", goerr.V("projectID", projectID))
		}

		var jd jobDocument
		if err := doc.DataTo(&jd); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal job")
		}
		job := jd.toModel()
		if latest == nil || job.StartedAt.After(latest.StartedAt) {
			latest = job
		}
	}

	if latest == nil {
		return nil, goerr.Wrap(ErrNotFound, "no job for project", goerr.V("projectID", projectID))
	}
	return latest, nil
}

func (r *jobRepository) Update(ctx context.Context, job *model.ProcessingJob) error {
	docRef := r.client.Collection(r.collection()).Doc(string(job.ID))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "job not found", goerr.V("id", job.ID))
		}
		return goerr.Wrap(err, "failed to get job", goerr.V("id", job.ID))
	}

	if _, err := docRef.Set(ctx, toJobDocument(job)); err != nil {
		return goerr.Wrap(err, "failed to update job", goerr.V("id", job.ID))
	}
	return nil
}

func (r *jobRepository) ListInFlight(ctx context.Context) ([]*model.ProcessingJob, error) {
	iter := r.client.Collection(r.collection()).
		Where("status", "in", []string{
			string(types.ProcessingStatusPending),
			string(types.ProcessingStatusProcessing),
		}).
		Documents(ctx)
	defer iter.Stop()

	var jobs []*model.ProcessingJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate in-flight jobs")
		}

		var jd jobDocument
		if err := doc.DataTo(&jd); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal job")
		}
		jobs = append(jobs, jd.toModel())
	}

	return jobs, nil
}
