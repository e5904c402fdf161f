// Package events delivers queued stock notifications to NATS
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/sirupsen/logrus"

	"pos-backoffice-service/internal/models"
)

// InventoryEventPublisher publishes stock-alert notifications to NATS
type InventoryEventPublisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewInventoryEventPublisher creates a new inventory event publisher
func NewInventoryEventPublisher(natsURL string, logger *logrus.Logger) (*InventoryEventPublisher, error) {
	if natsURL == "" {
		return nil, fmt.Errorf("NATS URL is required")
	}

	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "pos-backoffice-publisher"

	publisher, err := events.NewPublisher(config, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	// Ensure inventory stream exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := publisher.EnsureStream(ctx, events.StreamInventory, []string{"inventory.>"}); err != nil {
		log.WithError(err).Warn("Failed to ensure inventory stream exists")
	}

	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log.WithField("component", "inventory-events"),
	}, nil
}

// notificationEventType maps an outbox notification type onto the shared
// inventory event type and alert level.
func notificationEventType(t models.NotificationType) (string, string) {
	switch t {
	case models.NotificationTypeOutOfStock:
		return events.InventoryOutOfStock, "critical"
	case models.NotificationTypeLowStock:
		return events.InventoryLowStock, "warning"
	case models.NotificationTypeOverstocked:
		return events.InventoryAdjusted, "warning"
	default:
		return events.InventoryAdjusted, "info"
	}
}

// PublishNotification publishes one queued stock notification
func (p *InventoryEventPublisher) PublishNotification(ctx context.Context, notification *models.NotificationOutbox) error {
	eventType, alertLevel := notificationEventType(notification.Type)

	event := events.NewInventoryEvent(eventType, notification.TenantID)
	event.Items = []events.InventoryItem{
		{
			ProductID:    notification.ProductID.String(),
			CurrentStock: currentStockFromData(notification.Data),
			WarehouseID:  notification.StoreID.String(),
		},
	}
	event.AlertLevel = alertLevel
	event.AlertMessage = notification.Message
	event.CalculateSummary()

	if err := p.publisher.PublishInventory(ctx, event); err != nil {
		p.logger.WithFields(logrus.Fields{
			"notificationId": notification.ID,
			"type":           notification.Type,
			"productId":      notification.ProductID,
		}).WithError(err).Error("Failed to publish stock notification")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"notificationId": notification.ID,
		"type":           notification.Type,
		"productId":      notification.ProductID,
		"storeId":        notification.StoreID,
	}).Info("Published stock notification")
	return nil
}

func currentStockFromData(data *models.JSON) int {
	if data == nil {
		return 0
	}
	switch v := (*data)["currentStock"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// IsConnected returns true if connected to NATS
func (p *InventoryEventPublisher) IsConnected() bool {
	return p.publisher.IsConnected()
}

// Close closes the NATS connection
func (p *InventoryEventPublisher) Close() {
	p.publisher.Close()
}
