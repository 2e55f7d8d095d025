package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/panoptes-lab/panoptes/pkg/domain/model"
	"github.com/panoptes-lab/panoptes/pkg/domain/types"
	"github.com/panoptes-lab/panoptes/pkg/usecase"
	"github.com/panoptes-lab/panoptes/pkg/utils/errutil"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusOf maps use case errors to HTTP status codes. fallback applies to
// errors with no sentinel, e.g. validation failures on write endpoints.
func statusOf(err error, fallback int) int {
	switch {
	case errors.Is(err, usecase.ErrProjectNotFound),
		errors.Is(err, usecase.ErrReviewNotFound),
		errors.Is(err, usecase.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrReportNotReady):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrOntologyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return fallback
	}
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	project, err := s.uc.CreateProject(r.Context(), &model.Project{
		Name:        req.Name,
		Description: req.Description,
		WorkDone:    req.WorkDone,
		Status:      types.ProjectStatus(req.Status),
		Metadata:    req.Metadata,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusBadRequest))
		return
	}
	respondJSON(w, http.StatusCreated, toProjectResponse(project))
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.uc.ListProjects(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusInternalServerError))
		return
	}
	out := make([]*projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.uc.GetProject(r.Context(), types.ProjectID(chi.URLParam(r, "projectID")))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusInternalServerError))
		return
	}
	respondJSON(w, http.StatusOK, toProjectResponse(project))
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	projectID := types.ProjectID(chi.URLParam(r, "projectID"))
	project, err := s.uc.GetProject(r.Context(), projectID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusInternalServerError))
		return
	}

	project.Name = req.Name
	project.Description = req.Description
	project.WorkDone = req.WorkDone
	if req.Status != "" {
		project.Status = types.ProjectStatus(req.Status)
	}
	if req.Metadata != nil {
		project.Metadata = req.Metadata
	}

	updated, err := s.uc.UpdateProject(r.Context(), project)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusBadRequest))
		return
	}
	respondJSON(w, http.StatusOK, toProjectResponse(updated))
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.DeleteProject(r.Context(), types.ProjectID(chi.URLParam(r, "projectID"))); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusInternalServerError))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) submitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	review, err := s.uc.SubmitReview(r.Context(), types.ProjectID(chi.URLParam(r, "projectID")), &model.Review{
		ReviewerName:    req.ReviewerName,
		Text:            req.Text,
		ConfidenceScore: req.ConfidenceScore,
		Links:           req.Links,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusBadRequest))
		return
	}
	respondJSON(w, http.StatusCreated, toReviewResponse(review))
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.uc.ListReviews(r.Context(), types.ProjectID(chi.URLParam(r, "projectID")))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusInternalServerError))
		return
	}
	out := make([]*reviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toReviewResponse(rv))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) processProject(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
	}

	job, err := s.uc.ProcessProject(r.Context(), types.ProjectID(chi.URLParam(r, "projectID")), usecase.ProcessOptions{
		GenerateArtificial: req.GenerateArtificial,
		ForceReprocess:     req.ForceReprocess,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusInternalServerError))
		return
	}
	respondJSON(w, http.StatusAccepted, toJobResponse(job))
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.uc.GetStatus(r.Context(), types.ProjectID(chi.URLParam(r, "projectID")))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusInternalServerError))
		return
	}
	respondJSON(w, http.StatusOK, toJobResponse(job))
}

func (s *Server) getFeedback(w http.ResponseWriter, r *http.Request) {
	report, err := s.uc.GetFeedback(r.Context(), types.ProjectID(chi.URLParam(r, "projectID")))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusInternalServerError))
		return
	}
	respondJSON(w, http.StatusOK, toReportResponse(report))
}

func (s *Server) getOntology(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.uc.GetOntology(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err, http.StatusInternalServerError))
		return
	}
	respondJSON(w, http.StatusOK, toOntologyResponse(snapshot))
}
