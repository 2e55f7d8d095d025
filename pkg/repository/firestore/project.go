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

type projectDocument struct {
	ID               string         `firestore:"id"`
	Name             string         `firestore:"name"`
	Description      string         `firestore:"description"`
	WorkDone         string         `firestore:"work_done"`
	Status           string         `firestore:"status"`
	ProcessingStatus string         `firestore:"processing_status"`
	Metadata         map[string]any `firestore:"metadata,omitempty"`
	CreatedAt        time.Time      `firestore:"created_at"`
	UpdatedAt        time.Time      `firestore:"updated_at"`
}

func toProjectDocument(p *model.Project) *projectDocument {
	return &projectDocument{
		ID:               string(p.ID),
		Name:             p.Name,
		Description:      p.Description,
		WorkDone:         p.WorkDone,
		Status:           string(p.Status),
		ProcessingStatus: string(p.ProcessingStatus),
		Metadata:         p.Metadata,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (d *projectDocument) toModel() *model.Project {
	return &model.Project{
		ID:               types.ProjectID(d.ID),
		Name:             d.Name,
		Description:      d.Description,
		WorkDone:         d.WorkDone,
		Status:           types.ProjectStatus(d.Status),
		ProcessingStatus: types.ProcessingStatus(d.ProcessingStatus),
		Metadata:         d.Metadata,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

type projectRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProjectRepository(client *firestore.Client) *projectRepository {
	return &projectRepository{client: client}
}

func (r *projectRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_projects"
	}
	return "projects"
}

func (r *projectRepository) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	now := time.Now().UTC()
	created := *p
	created.ID = types.NewProjectID()
	if created.Status == "" {
		created.Status = types.ProjectStatusActive
	}
	if created.ProcessingStatus == "" {
		created.ProcessingStatus = types.ProcessingStatusPending
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.client.Collection(r.collection()).Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toProjectDocument(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create project", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	doc, err := r.client.Collection(r.collection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("id", id))
	}

	var pd projectDocument
	if err := doc.DataTo(&pd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("id", id))
	}
	return pd.toModel(), nil
}

func (r *projectRepository) List(ctx context.Context) ([]*model.Project, error) {
	iter := r.client.Collection(r.collection()).Documents(ctx)
	defer iter.Stop()

	var projects []*model.Project
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate projects")
		}

		var pd projectDocument
		if err := doc.DataTo(&pd); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal project")
		}
		projects = append(projects, pd.toModel())
	}

	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, p *model.Project) (*model.Project, error) {
	docRef := r.client.Collection(r.collection()).Doc(string(p.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", p.ID))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("id", p.ID))
	}

	var existing projectDocument
	if err := doc.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("id", p.ID))
	}

	updated := *p
	updated.ProcessingStatus = types.ProcessingStatus(existing.ProcessingStatus)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, toProjectDocument(&updated)); err != nil {
		return nil, goerr.Wrap(err, "failed to update project", goerr.V("id", p.ID))
	}

	return &updated, nil
}

func (r *projectRepository) Delete(ctx context.Context, id types.ProjectID) error {
	docRef := r.client.Collection(r.collection()).Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get project", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete project", goerr.V("id", id))
	}
	return nil
}

func (r *projectRepository) UpdateProcessingStatus(ctx context.Context, id types.ProjectID, st types.ProcessingStatus) error {
	docRef := r.client.Collection(r.collection()).Doc(string(id))

	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "processing_status", Value: string(st)},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to update processing status", goerr.V("id", id))
	}
	return nil
}
