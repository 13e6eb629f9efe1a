package batchhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paybatch/internal/domain/batch"
	"paybatch/internal/domain/directory"
	"paybatch/internal/domain/period"
	"paybatch/internal/domain/reports"
	"paybatch/internal/transport/http/api"
	directoryhandler "paybatch/internal/transport/http/handlers/directory"
	"paybatch/internal/transport/http/middleware"
)

// checkStore and companyStore are the slices of the persistence layer the
// register report needs.
type checkStore interface {
	ListChecks(ctx context.Context, companyID, weekKey string) ([]batch.Check, error)
}

type companyStore interface {
	GetCompany(ctx context.Context, id string) (*directory.Company, error)
}

type Handler struct {
	checks    checkStore
	companies companyStore
	committer *batch.Committer
}

func NewHandler(db *pgxpool.Pool) *Handler {
	store := batch.NewStore(db)
	return &Handler{checks: store, companies: directory.NewStore(db), committer: batch.NewCommitter(store)}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/batch", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/review", h.handleReview)
		r.Post("/commit", h.handleCommit)
		r.Get("/register.pdf", h.handleRegister)
	})
}

type reviewRequest struct {
	CompanyID string         `json:"companyId"`
	Snapshot  batch.Snapshot `json:"snapshot"`
}

type commitRequest struct {
	CompanyID string         `json:"companyId"`
	Snapshot  batch.Snapshot `json:"snapshot"`
	CheckDate string         `json:"checkDate,omitempty"`
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if !directoryhandler.CanAccessCompany(user.Role, user.CompanyIDs, payload.CompanyID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "company not accessible", middleware.GetRequestID(r.Context()))
		return
	}

	results, err := h.committer.BuildReview(r.Context(), payload.CompanyID, payload.Snapshot)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_failed", "failed to build review", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, results, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload commitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if !directoryhandler.CanAccessCompany(user.Role, user.CompanyIDs, payload.CompanyID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "company not accessible", middleware.GetRequestID(r.Context()))
		return
	}

	opts := batch.CommitOptions{CreatedBy: user.UserID}
	if payload.CheckDate != "" {
		parsed, err := period.ParseDate(payload.CheckDate)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "checkDate must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
			return
		}
		opts.CheckDate = parsed
	}

	checks, err := h.committer.Commit(r.Context(), payload.CompanyID, payload.Snapshot, opts)
	if err != nil {
		h.failCommit(w, r, err)
		return
	}
	api.Created(w, checks, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failCommit(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var partial *batch.PartialWriteError
	switch {
	case errors.Is(err, batch.ErrEmptyBatch):
		api.Fail(w, http.StatusUnprocessableEntity, "empty_batch", "no employee or expense entry has a nonzero total", requestID)
	case errors.Is(err, batch.ErrNoBankConfigured):
		api.Fail(w, http.StatusConflict, "no_bank", "no bank configured for company", requestID)
	case errors.As(err, &partial):
		// Never passes silently: the operator must reconcile the written
		// checks before retrying.
		api.Fail(w, http.StatusBadGateway, "partial_write", fmt.Sprintf("%d checks were written before the failure; reconcile before retrying", partial.Written), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "commit_failed", "failed to commit batch", requestID)
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companyID := r.URL.Query().Get("companyId")
	weekKey := r.URL.Query().Get("week")
	if companyID == "" || weekKey == "" {
		api.Fail(w, http.StatusBadRequest, "missing_params", "companyId and week are required", middleware.GetRequestID(r.Context()))
		return
	}
	if !directoryhandler.CanAccessCompany(user.Role, user.CompanyIDs, companyID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "company not accessible", middleware.GetRequestID(r.Context()))
		return
	}

	checks, err := h.checks.ListChecks(r.Context(), companyID, weekKey)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to load checks", middleware.GetRequestID(r.Context()))
		return
	}

	companyName := companyID
	if company, err := h.companies.GetCompany(r.Context(), companyID); err == nil && company != nil {
		companyName = company.Name
	}

	pdf, err := reports.CheckRegisterPDF(companyName, weekKey, checks)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to render register", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=register-%s.pdf", weekKey))
	_, _ = w.Write(pdf)
}
