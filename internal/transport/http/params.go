package http

import (
	"fmt"
	"github.com/gorilla/mux"
	"issue-service/internal/models"
	"math"
	"net/http"
	"strconv"
)

// Pagination holds the page size defaults applied to list endpoints.
type Pagination struct {
	DefaultSize int
	MaxSize     int
}

// getID extracts a positive int64 path variable.
func getID(r *http.Request, name string) (int64, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok || raw == "" {
		return 0, fmt.Errorf("%w: %s is required", errInvalidRequest, name)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s parameter %q", errInvalidRequest, name, raw)
	}

	if id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number", errInvalidRequest, name)
	}

	return id, nil
}

func getStatus(r *http.Request) (models.IssueStatus, error) {
	status, err := models.ParseIssueStatus(mux.Vars(r)["issueStatus"])
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidRequest, err)
	}

	return status, nil
}

// getPageRequest reads page, size and sort query parameters. Unparseable page and
// size values fall back to defaults; size is capped at MaxSize and page is clamped
// so the row offset stays within int32. An unknown sort property is rejected.
func (p Pagination) getPageRequest(r *http.Request) (models.PageRequest, error) {
	q := r.URL.Query()

	req := models.PageRequest{Page: 0, Size: p.DefaultSize}

	if sizeStr := q.Get("size"); sizeStr != "" {
		parsed, err := strconv.Atoi(sizeStr)
		if err == nil && parsed > 0 {
			req.Size = parsed
		}
	}

	if req.Size > p.MaxSize {
		req.Size = p.MaxSize
	}

	if pageStr := q.Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err == nil && parsed >= 0 {
			req.Page = min(parsed, math.MaxInt32/req.Size)
		}
	}

	for _, raw := range q["sort"] {
		order, err := models.ParseSortOrder(raw)
		if err != nil {
			return models.PageRequest{}, fmt.Errorf("%w: %w", errInvalidRequest, err)
		}
		req.Sort = append(req.Sort, order)
	}

	return req, nil
}
