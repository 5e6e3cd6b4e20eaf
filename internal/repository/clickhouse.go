package repository

import (
	"context"
	"github.com/ClickHouse/clickhouse-go/v2"
	"issue-service/internal/models"
)

type ClickhouseRepository struct {
	conn clickhouse.Conn
}

func NewClickhouseRepository(conn clickhouse.Conn) *ClickhouseRepository {
	return &ClickhouseRepository{conn: conn}
}

func (r *ClickhouseRepository) LogIssueEvent(ctx context.Context, event *models.IssueEvent) error {
	query := `
        INSERT INTO issues_log (
            Id, ProjectId, AssigneeId, Title, IssueStatus, Removed, EventType, EventTime
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	return r.conn.Exec(ctx, query,
		event.ID,
		event.ProjectID,
		event.AssigneeID,
		event.Title,
		string(event.IssueStatus),
		event.Removed,
		event.EventType,
		event.EventTime,
	)
}
