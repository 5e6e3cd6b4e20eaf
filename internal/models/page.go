package models

import (
	"fmt"
	"strings"
)

const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// sortColumns maps the sortable JSON property names to their SQL columns.
var sortColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"date":        "date",
	"issueStatus": "issue_status",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

type SortOrder struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// Column returns the SQL column for the order's property.
func (o SortOrder) Column() string {
	return sortColumns[o.Property]
}

// ParseSortOrder parses "property" or "property,asc|desc".
func ParseSortOrder(raw string) (SortOrder, error) {
	parts := strings.Split(raw, ",")
	if len(parts) > 2 {
		return SortOrder{}, fmt.Errorf("%w: %q", ErrInvalidSort, raw)
	}

	order := SortOrder{Property: strings.TrimSpace(parts[0]), Direction: SortAsc}
	if _, ok := sortColumns[order.Property]; !ok {
		return SortOrder{}, fmt.Errorf("%w: unknown property %q", ErrInvalidSort, order.Property)
	}

	if len(parts) == 2 {
		switch strings.ToUpper(strings.TrimSpace(parts[1])) {
		case SortAsc:
		case SortDesc:
			order.Direction = SortDesc
		default:
			return SortOrder{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidSort, parts[1])
		}
	}

	return order, nil
}

// PageRequest is a zero-based page index plus page size and optional ordering.
type PageRequest struct {
	Page int
	Size int
	Sort []SortOrder
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// OrderBy renders the ORDER BY clause body. id is always appended as a tiebreaker
// so consecutive pages never overlap.
func (p PageRequest) OrderBy() string {
	clauses := make([]string, 0, len(p.Sort)+1)
	hasID := false
	for _, o := range p.Sort {
		col := o.Column()
		if col == "" {
			continue
		}
		if col == "id" {
			hasID = true
		}
		dir := SortAsc
		if o.Direction == SortDesc {
			dir = SortDesc
		}
		clauses = append(clauses, col+" "+dir)
	}
	if !hasID {
		clauses = append(clauses, "id "+SortAsc)
	}

	return strings.Join(clauses, ", ")
}

type Page[T any] struct {
	Content       []T         `json:"content"`
	Number        int         `json:"number"`
	Size          int         `json:"size"`
	TotalElements int64       `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
	Sort          []SortOrder `json:"sort"`
}

func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	sort := req.Sort
	if sort == nil {
		sort = []SortOrder{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return &Page[T]{
		Content:       content,
		Number:        req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		Sort:          sort,
	}
}
