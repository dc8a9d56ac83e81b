package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/segmentio/kafka-go"
)

const (
	CampaignStarted   = "campaign.started"
	CampaignCompleted = "campaign.completed"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits lifecycle events keyed by campaign id.
type KafkaPublisher struct {
	writer       messageWriter
	topicByEvent map[string]string
	now          func() time.Time
}

func NewKafkaPublisher(brokers []string, topicByEvent map[string]string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topicByEvent: topicByEvent,
		now:          time.Now,
	}, nil
}

// TopicsFor routes every lifecycle event to topic.
func TopicsFor(topic string) map[string]string {
	return map[string]string{
		CampaignStarted:   topic,
		CampaignCompleted: topic,
	}
}

// Envelope is the JSON value of every lifecycle message.
type Envelope struct {
	EventType  string           `json:"eventType"`
	OccurredAt time.Time        `json:"occurredAt"`
	Transition types.Transition `json:"transition"`
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	topic := eventType
	if mapped, ok := p.topicByEvent[eventType]; ok && mapped != "" {
		topic = mapped
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(partitionKey),
		Value: payload,
		Time:  p.now().UTC(),
	})
}

// NotifyTransition publishes campaign.started or campaign.completed. Other
// transitions are ignored.
func (p *KafkaPublisher) NotifyTransition(ctx context.Context, t types.Transition) error {
	var eventType string
	switch t.To {
	case types.StateStarted:
		eventType = CampaignStarted
	case types.StateCompleted:
		eventType = CampaignCompleted
	default:
		return nil
	}

	payload, err := json.Marshal(Envelope{EventType: eventType, OccurredAt: t.At, Transition: t})
	if err != nil {
		return fmt.Errorf("encode %s: %w", eventType, err)
	}
	return p.Publish(ctx, eventType, payload, t.CampaignID)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
