package outbox

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"

	"quickshow/internal/observability"
)

const Topic = "events_to_forward"

// NewPublisher writes messages to the outbox table through the given
// transaction, so publishing commits or rolls back together with the
// state change that caused it.
func NewPublisher(
	tx watermillSQL.ContextExecutor,
	logger watermill.LoggerAdapter,
) (message.Publisher, error) {
	publisher, err := watermillSQL.NewPublisher(
		tx,
		watermillSQL.PublisherConfig{
			SchemaAdapter: watermillSQL.DefaultPostgreSQLSchema{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	publisherWithTracing := observability.PublisherWithTracing{Publisher: publisher}

	return forwarder.NewPublisher(publisherWithTracing, forwarder.PublisherConfig{
		ForwarderTopic: Topic,
	}), nil
}
