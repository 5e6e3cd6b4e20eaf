package http

import (
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"issue-service/internal/models"
	"net/http"
)

type RouterConfig struct {
	BasePath       string
	AllowedOrigins []string
}

func NewRouter(h *Handler, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithFailure(w, http.StatusNotFound, models.MessageNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithFailure(w, http.StatusMethodNotAllowed, models.MessageError)
	})

	// API routes
	api := r.PathPrefix(cfg.BasePath).Subrouter()

	// Issue endpoints
	api.HandleFunc("/getAllByPagination", h.GetAllByPagination).Methods(http.MethodGet)
	api.HandleFunc("/getIssueById/{id}", h.GetIssueByID).Methods(http.MethodGet)
	api.HandleFunc("/getIssueByIdWithDetails/{id}", h.GetIssueByIDWithDetails).Methods(http.MethodGet)
	api.HandleFunc("/CreateIssue", h.CreateIssue).Methods(http.MethodPost)
	api.HandleFunc("/updateIssue/{id}", h.UpdateIssue).Methods(http.MethodPut)
	api.HandleFunc("/deleteIssue/{id}", h.DeleteIssue).Methods(http.MethodDelete)
	api.HandleFunc("/statuses", h.GetIssueStatuses).Methods(http.MethodGet)
	api.HandleFunc("/GetIssuesByProjectId/{id}", h.GetIssuesByProjectID).Methods(http.MethodGet)
	api.HandleFunc("/GetIssuesByAssigneeAndStatus/{id}/{issueStatus}", h.GetIssuesByAssigneeAndStatus).Methods(http.MethodGet)
	api.HandleFunc("/dashboardIssue/{id}/{issueStatus}", h.GetDashboardIssues).Methods(http.MethodGet)
	api.HandleFunc("/getAllIssuesByAssignee/{id}", h.GetAllIssuesByAssignee).Methods(http.MethodGet)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// CORS sits outside the mux: preflight OPTIONS requests match no route.
	var handler http.Handler = r
	handler = cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	})(handler)
	handler = recoverer(logger)(handler)
	handler = requestLogger(logger)(handler)
	handler = requestID(handler)

	return handler
}
