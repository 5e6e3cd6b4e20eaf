package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"issue-service/internal/models"
	"time"
)

const defaultIssueTTL = time.Minute

type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = defaultIssueTTL
	}
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) SetIssue(ctx context.Context, issue *models.Issue) error {
	data, err := json.Marshal(issue)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, issueKey(issue.ID), data, r.ttl).Err()
}

// GetIssue returns nil, nil on a cache miss.
func (r *RedisRepository) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	data, err := r.client.Get(ctx, issueKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var issue models.Issue
	if err := json.Unmarshal(data, &issue); err != nil {
		return nil, err
	}

	return &issue, nil
}

func (r *RedisRepository) InvalidateIssue(ctx context.Context, id int64) error {
	return r.client.Del(ctx, issueKey(id)).Err()
}

func issueKey(id int64) string {
	return fmt.Sprintf("issue:%d", id)
}
