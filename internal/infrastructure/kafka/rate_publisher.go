package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/niagahub/niaga-rate-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type RateEventPublisher struct {
	rateWriter   *kafka.Writer
	switchWriter *kafka.Writer
}

func NewRateEventPublisher(brokers []string, rateTopic, switchTopic string) *RateEventPublisher {
	return &RateEventPublisher{
		rateWriter: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    rateTopic,
			Balancer: &kafka.LeastBytes{},
		},
		switchWriter: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    switchTopic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (k *RateEventPublisher) PublishRateUpdated(event domain.RateUpdatedEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.rateWriter.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.TenantID),
		Value: msg,
		Time:  time.Now(),
	})
}

func (k *RateEventPublisher) PublishProviderSwitched(event domain.ProviderSwitchedEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.switchWriter.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.TenantID),
		Value: msg,
		Time:  time.Now(),
	})
}

func (k *RateEventPublisher) Close() error {
	if err := k.rateWriter.Close(); err != nil {
		return err
	}
	return k.switchWriter.Close()
}
