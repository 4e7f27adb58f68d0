package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/service"
)

// StartNotificationWorker registers notification handlers and, when
// configured, the Kafka forwarder on the dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, kafka *events.KafkaPublisher, logger *zap.Logger) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if kafka != nil && dispatcher != nil {
		kafka.Register(dispatcher, events.AllEventTypes...)
		if logger != nil {
			logger.Info("kafka event forwarding enabled")
		}
	}
}
