package http

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"issue-service/internal/models"
	"net/http"
)

const maxBodyBytes = 1 << 20

// IssueService is the collaborator every handler delegates to.
type IssueService interface {
	GetAllPageable(ctx context.Context, page models.PageRequest) (*models.Page[models.Issue], error)
	GetByID(ctx context.Context, id int64) (*models.Issue, error)
	GetByIDWithDetails(ctx context.Context, id int64) (*models.IssueDetail, error)
	Create(ctx context.Context, input models.IssueInput) (*models.Issue, error)
	Update(ctx context.Context, id int64, input models.IssueInput) (*models.IssueDetail, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetByProjectID(ctx context.Context, projectID int64, page models.PageRequest) (*models.Page[models.Issue], error)
	GetByAssigneeAndStatus(ctx context.Context, assigneeID int64, status models.IssueStatus, page models.PageRequest) (*models.Page[models.Issue], error)
	GetAllByAssigneeAndStatus(ctx context.Context, assigneeID int64, status models.IssueStatus) ([]models.Issue, error)
	GetAllByAssignee(ctx context.Context, assigneeID int64) ([]models.Issue, error)
}

type Handler struct {
	issueService IssueService
	pagination   Pagination
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewHandler(issueService IssueService, pagination Pagination, logger *zap.Logger) *Handler {
	return &Handler{
		issueService: issueService,
		pagination:   pagination,
		validate:     newValidator(),
		logger:       logger,
	}
}

func (h *Handler) GetAllByPagination(w http.ResponseWriter, r *http.Request) {
	page, err := h.pagination.getPageRequest(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	issues, err := h.issueService.GetAllPageable(r.Context(), page)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondOK(w, issues)
}

func (h *Handler) GetIssueByID(w http.ResponseWriter, r *http.Request) {
	id, err := getID(r, "id")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	issue, err := h.issueService.GetByID(r.Context(), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondOK(w, issue)
}

func (h *Handler) GetIssueByIDWithDetails(w http.ResponseWriter, r *http.Request) {
	id, err := getID(r, "id")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	detail, err := h.issueService.GetByIDWithDetails(r.Context(), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondOK(w, detail)
}

func (h *Handler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	input, err := h.decodeInput(w, r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	issue, err := h.issueService.Create(r.Context(), input)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondOK(w, issue)
}

func (h *Handler) UpdateIssue(w http.ResponseWriter, r *http.Request) {
	id, err := getID(r, "id")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	input, err := h.decodeInput(w, r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	detail, err := h.issueService.Update(r.Context(), id, input)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondOK(w, detail)
}

// DeleteIssue answers 400 with the failure envelope when the service reports nothing was deleted.
func (h *Handler) DeleteIssue(w http.ResponseWriter, r *http.Request) {
	id, err := getID(r, "id")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	deleted, err := h.issueService.Delete(r.Context(), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if !deleted {
		respondWithFailure(w, http.StatusBadRequest, models.MessageError)
		return
	}

	respondOK(w, nil)
}

func (h *Handler) GetIssueStatuses(w http.ResponseWriter, r *http.Request) {
	respondOK(w, models.Statuses())
}

func (h *Handler) GetIssuesByProjectID(w http.ResponseWriter, r *http.Request) {
	id, err := getID(r, "id")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	page, err := h.pagination.getPageRequest(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	issues, err := h.issueService.GetByProjectID(r.Context(), id, page)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondOK(w, issues)
}

func (h *Handler) GetIssuesByAssigneeAndStatus(w http.ResponseWriter, r *http.Request) {
	id, status, err := getAssigneeAndStatus(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	page, err := h.pagination.getPageRequest(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	issues, err := h.issueService.GetByAssigneeAndStatus(r.Context(), id, status, page)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondOK(w, issues)
}

// GetDashboardIssues returns every matching issue. Pagination query parameters are accepted and ignored.
func (h *Handler) GetDashboardIssues(w http.ResponseWriter, r *http.Request) {
	id, status, err := getAssigneeAndStatus(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	issues, err := h.issueService.GetAllByAssigneeAndStatus(r.Context(), id, status)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondOK(w, issues)
}

func (h *Handler) GetAllIssuesByAssignee(w http.ResponseWriter, r *http.Request) {
	id, err := getID(r, "id")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	issues, err := h.issueService.GetAllByAssignee(r.Context(), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondOK(w, issues)
}

func getAssigneeAndStatus(r *http.Request) (int64, models.IssueStatus, error) {
	id, err := getID(r, "id")
	if err != nil {
		return 0, "", err
	}

	status, err := getStatus(r)
	if err != nil {
		return 0, "", err
	}

	return id, status, nil
}

// decodeInput decodes and validates an IssueInput body.
func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (models.IssueInput, error) {
	var input models.IssueInput

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return input, fmt.Errorf("%w: invalid request payload: %w", errInvalidRequest, err)
	}

	if err := h.validate.Struct(input); err != nil {
		return input, fmt.Errorf("%w: %w", errInvalidRequest, err)
	}

	return input, nil
}
