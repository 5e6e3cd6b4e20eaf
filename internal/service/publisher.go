package service

import (
	"encoding/json"
	"fmt"
	"github.com/nats-io/nats.go"
	"issue-service/internal/models"
)

type NATSPublisher struct {
	natsConn *nats.Conn
}

func NewNATSPublisher(natsConn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{natsConn: natsConn}
}

// Publish sends the event to issue.<type>.
func (p *NATSPublisher) Publish(event *models.IssueEvent) error {
	bytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	if err := p.natsConn.Publish(event.Subject(), bytes); err != nil {
		return fmt.Errorf("error publishing to NATS: %w", err)
	}

	return nil
}
