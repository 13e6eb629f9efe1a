package directoryhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paybatch/internal/domain/directory"
	"paybatch/internal/transport/http/api"
	"paybatch/internal/transport/http/middleware"
)

type Handler struct {
	Store *directory.Store
}

func NewHandler(db *pgxpool.Pool) *Handler {
	return &Handler{Store: directory.NewStore(db)}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/directory", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/companies", h.handleListCompanies)
		r.Get("/clients", h.handleListClients)
		r.Get("/employees", h.handleListEmployees)
	})
}

func (h *Handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companies, err := h.Store.GetCompanies(r.Context(), user.Role, user.CompanyIDs)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "directory_companies_failed", "failed to list companies", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, companies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Store.GetClients(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "directory_clients_failed", "failed to list clients", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, clients, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companyID := r.URL.Query().Get("companyId")
	if companyID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_company", "companyId is required", middleware.GetRequestID(r.Context()))
		return
	}
	if !CanAccessCompany(user.Role, user.CompanyIDs, companyID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "company not accessible", middleware.GetRequestID(r.Context()))
		return
	}

	employees, err := h.Store.GetEmployees(r.Context(), companyID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "directory_employees_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func CanAccessCompany(role string, companyIDs []string, companyID string) bool {
	if role == "admin" {
		return true
	}
	for _, id := range companyIDs {
		if id == companyID {
			return true
		}
	}
	return false
}
