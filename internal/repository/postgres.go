package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"issue-service/internal/models"
)

const issueColumns = `id, title, description, details, date, issue_status, assignee_id, project_id, removed, created_at, updated_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanIssue(row pgx.Row) (*models.Issue, error) {
	var issue models.Issue
	err := row.Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Details,
		&issue.Date,
		&issue.IssueStatus,
		&issue.AssigneeID,
		&issue.ProjectID,
		&issue.Removed,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &issue, nil
}

// ignoreNoRows maps pgx.ErrNoRows to nil so lookups can report absence as nil, nil.
func ignoreNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

func collectIssues(rows pgx.Rows) ([]models.Issue, error) {
	defer rows.Close()

	issues := []models.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *issue)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return issues, nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, h models.IssueHistory) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO issue_history (issue_id, title, description, details, date, issue_status, assignee_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		h.IssueID,
		h.Title,
		h.Description,
		h.Details,
		h.Date,
		string(h.IssueStatus),
		h.AssigneeID,
	)
	return err
}

// CreateIssue inserts the issue, filling in the generated fields. History starts
// with the first update.
func (r *PostgresRepository) CreateIssue(ctx context.Context, issue *models.Issue) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO issues (title, description, details, date, issue_status, assignee_id, project_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		issue.Title,
		issue.Description,
		issue.Details,
		issue.Date,
		string(issue.IssueStatus),
		issue.AssigneeID,
		issue.ProjectID,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}

	return nil
}

// UpdateIssue snapshots the stored state into issue_history and applies the update
// in one transaction. Returns models.ErrNotFound if the issue is absent or removed.
func (r *PostgresRepository) UpdateIssue(ctx context.Context, issue *models.Issue) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	current, err := scanIssue(tx.QueryRow(ctx, `
		SELECT `+issueColumns+`
		FROM issues
		WHERE id = $1 AND NOT removed
		FOR UPDATE`,
		issue.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return err
	}

	if err = insertHistory(ctx, tx, models.HistoryOf(current)); err != nil {
		return fmt.Errorf("insert issue history: %w", err)
	}

	updated, err := scanIssue(tx.QueryRow(ctx, `
		UPDATE issues
		SET title = $1, description = $2, details = $3, date = $4,
			issue_status = $5, assignee_id = $6, project_id = $7, updated_at = now()
		WHERE id = $8
		RETURNING `+issueColumns,
		issue.Title,
		issue.Description,
		issue.Details,
		issue.Date,
		string(issue.IssueStatus),
		issue.AssigneeID,
		issue.ProjectID,
		issue.ID,
	))
	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	*issue = *updated
	return nil
}

// MarkAsRemoved soft-deletes the issue. It returns nil, nil when there was nothing to remove.
func (r *PostgresRepository) MarkAsRemoved(ctx context.Context, id int64) (*models.Issue, error) {
	issue, err := scanIssue(r.pool.QueryRow(ctx, `
		UPDATE issues
		SET removed = true, updated_at = now()
		WHERE id = $1 AND NOT removed
		RETURNING `+issueColumns,
		id))
	if err != nil {
		return nil, ignoreNoRows(err)
	}

	return issue, nil
}

// GetIssue returns nil, nil when the issue does not exist or was removed.
func (r *PostgresRepository) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	issue, err := scanIssue(r.pool.QueryRow(ctx, `
		SELECT `+issueColumns+`
		FROM issues
		WHERE id = $1 AND NOT removed`,
		id))
	if err != nil {
		return nil, ignoreNoRows(err)
	}

	return issue, nil
}

func (r *PostgresRepository) ListIssues(ctx context.Context, filter IssueFilter, page models.PageRequest) ([]models.Issue, error) {
	query, args := listIssuesQuery(filter, page)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return collectIssues(rows)
}

// listIssuesQuery renders the paged select; LIMIT and OFFSET take the two
// placeholders after the filter's own.
func listIssuesQuery(filter IssueFilter, page models.PageRequest) (string, []any) {
	where, args := filter.where()
	args = append(args, page.Size, page.Offset())

	query := fmt.Sprintf(`
		SELECT %s
		FROM issues
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		issueColumns, where, page.OrderBy(), len(args)-1, len(args))

	return query, args
}

func (r *PostgresRepository) ListAllIssues(ctx context.Context, filter IssueFilter) ([]models.Issue, error) {
	where, args := filter.where()

	rows, err := r.pool.Query(ctx, `
		SELECT `+issueColumns+`
		FROM issues
		WHERE `+where+`
		ORDER BY id`,
		args...)
	if err != nil {
		return nil, err
	}

	return collectIssues(rows)
}

func (r *PostgresRepository) CountIssues(ctx context.Context, filter IssueFilter) (int64, error) {
	where, args := filter.where()

	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM issues
		WHERE `+where,
		args...,
	).Scan(&count)

	return count, err
}

// ListHistory returns the issue's history, newest first.
func (r *PostgresRepository) ListHistory(ctx context.Context, issueID int64) ([]models.IssueHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, issue_id, title, description, details, date, issue_status, assignee_id
		FROM issue_history
		WHERE issue_id = $1
		ORDER BY id DESC`,
		issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []models.IssueHistory{}
	for rows.Next() {
		var h models.IssueHistory
		err := rows.Scan(
			&h.ID,
			&h.IssueID,
			&h.Title,
			&h.Description,
			&h.Details,
			&h.Date,
			&h.IssueStatus,
			&h.AssigneeID,
		)
		if err != nil {
			return nil, err
		}
		history = append(history, h)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}

// GetProject returns nil, nil when the project does not exist.
func (r *PostgresRepository) GetProject(ctx context.Context, id int64) (*models.ProjectRef, error) {
	var p models.ProjectRef
	err := r.pool.QueryRow(ctx, `
		SELECT id, project_name, project_code
		FROM projects
		WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.ProjectName, &p.ProjectCode)
	if err != nil {
		return nil, ignoreNoRows(err)
	}

	return &p, nil
}

// GetUser returns nil, nil when the user does not exist.
func (r *PostgresRepository) GetUser(ctx context.Context, id int64) (*models.UserRef, error) {
	var u models.UserRef
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, name_surname
		FROM users
		WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.NameSurname)
	if err != nil {
		return nil, ignoreNoRows(err)
	}

	return &u, nil
}

func (r *PostgresRepository) CheckProjectExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id)
}

func (r *PostgresRepository) CheckUserExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}
