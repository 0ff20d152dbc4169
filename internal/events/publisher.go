package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"crm-service/internal/models"
)

// Customer lifecycle event subjects.
const (
	CustomerCreated       = "customer.created"
	CustomerUpdated       = "customer.updated"
	CustomerDeleted       = "customer.deleted"
	CustomerStatusChanged = "customer.status_changed"
)

const streamName = "CRM_CUSTOMERS"

// CustomerEvent is the wire envelope for customer lifecycle events.
type CustomerEvent struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	OrganizationID string    `json:"organizationId"`
	CustomerID     string    `json:"customerId"`
	CustomerName   string    `json:"customerName,omitempty"`
	CustomerEmail  string    `json:"customerEmail,omitempty"`
	Status         string    `json:"status,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher publishes customer lifecycle events to JetStream.
type Publisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the customers stream exists.
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("crm-service"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(streamName); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			nc.Close()
			return nil, fmt.Errorf("failed to look up stream: %w", err)
		}
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{"customer.>"},
			Storage:  nats.FileStorage,
		}); err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "events"),
	}, nil
}

// Close drains the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// PublishCustomerCreated publishes a customer.created event.
func (p *Publisher) PublishCustomerCreated(ctx context.Context, customer *models.Customer) error {
	return p.publish(ctx, p.buildEvent(CustomerCreated, customer))
}

// PublishCustomerUpdated publishes a customer.updated event.
func (p *Publisher) PublishCustomerUpdated(ctx context.Context, customer *models.Customer) error {
	return p.publish(ctx, p.buildEvent(CustomerUpdated, customer))
}

// PublishCustomerDeleted publishes a customer.deleted event.
func (p *Publisher) PublishCustomerDeleted(ctx context.Context, customer *models.Customer) error {
	return p.publish(ctx, p.buildEvent(CustomerDeleted, customer))
}

// PublishCustomerStatusChanged publishes a customer.status_changed event.
func (p *Publisher) PublishCustomerStatusChanged(ctx context.Context, customer *models.Customer) error {
	return p.publish(ctx, p.buildEvent(CustomerStatusChanged, customer))
}

func (p *Publisher) buildEvent(eventType string, customer *models.Customer) *CustomerEvent {
	return &CustomerEvent{
		ID:             uuid.New().String(),
		Type:           eventType,
		OrganizationID: customer.OrganizationID.String(),
		CustomerID:     customer.ID.String(),
		CustomerName:   customer.Name,
		CustomerEmail:  customer.Email,
		Status:         customer.Status,
		Timestamp:      time.Now().UTC(),
	}
}

func (p *Publisher) publish(ctx context.Context, event *CustomerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(event.Type, data, nats.Context(ctx)); err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"subject":     event.Type,
			"customer_id": event.CustomerID,
		}).Warn("Failed to publish event")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"subject":     event.Type,
		"customer_id": event.CustomerID,
	}).Debug("Event published")
	return nil
}
