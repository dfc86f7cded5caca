package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"quickshow/internal/entities"
)

// Events are named by the domain (entities.Event), not by struct name,
// so wire topics stay stable across refactors.
var Marshaler = cqrs.JSONMarshaler{
	GenerateName: func(v interface{}) string {
		if event, ok := v.(entities.Event); ok {
			return event.EventName()
		}
		return cqrs.StructName(v)
	},
}

func NewEventProcessorConfig(
	redisClient *redis.Client,
	watermillLogger watermill.LoggerAdapter,
) cqrs.EventProcessorConfig {
	return cqrs.EventProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			handlerEvent := params.EventHandler.NewEvent()
			event, ok := handlerEvent.(entities.Event)
			if !ok {
				return "", fmt.Errorf("invalid event type: %T doesn't implement entities.Event", handlerEvent)
			}

			return TopicForEvent(event), nil
		},
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        redisClient,
				ConsumerGroup: "svc-booking." + params.HandlerName,
			}, watermillLogger)
		},
		Marshaler: Marshaler,
		Logger:    watermillLogger,
	}
}

func TopicForEvent(event entities.Event) string {
	if event.IsInternal() {
		return "internal-events.svc-booking." + event.EventName()
	}
	return "events." + event.EventName()
}
