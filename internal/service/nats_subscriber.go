package service

import (
	"context"
	"encoding/json"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"issue-service/internal/models"
	"time"
)

const (
	issueSubjects = "issue.*"
	sinkTimeout   = 5 * time.Second
)

type NATSSubscriber struct {
	natsConn *nats.Conn
	sink     EventSink
	logger   *zap.Logger
	sub      *nats.Subscription
}

func NewNATSSubscriber(natsConn *nats.Conn, sink EventSink, logger *zap.Logger) *NATSSubscriber {
	return &NATSSubscriber{
		natsConn: natsConn,
		sink:     sink,
		logger:   logger,
	}
}

func (s *NATSSubscriber) Subscribe() error {
	sub, err := s.natsConn.Subscribe(issueSubjects, s.handle)
	if err != nil {
		return err
	}
	s.sub = sub

	s.logger.Info("subscribed to NATS subjects", zap.String("subject", issueSubjects))

	return nil
}

// Unsubscribe drains in-flight messages before detaching.
func (s *NATSSubscriber) Unsubscribe() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Drain()
}

func (s *NATSSubscriber) handle(msg *nats.Msg) {
	s.logger.Debug("received NATS message", zap.String("subject", msg.Subject))

	var event models.IssueEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.logger.Warn("dropping malformed issue event",
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := s.sink.LogIssueEvent(ctx, &event); err != nil {
		s.logger.Error("failed to log issue event to ClickHouse",
			zap.Int64("issue_id", event.ID),
			zap.Error(err))
		return
	}

	s.logger.Debug("logged issue event to ClickHouse",
		zap.Int64("issue_id", event.ID),
		zap.String("event_type", event.EventType))
}
