package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/shaiso/templatehub/internal/catalog"
	"github.com/shaiso/templatehub/internal/mq"
)

// NewEventsCmd создаёт группу команд для работы с событиями шаблонов.
func NewEventsCmd(outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect template events",
	}

	cmd.AddCommand(newEventsWatchCmd(outputFn))

	return cmd
}

func newEventsWatchCmd(outputFn func() *Output) *cobra.Command {
	var (
		amqpURL string
		types   []string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream template events from the audit queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseEventTypes(types)
			if err != nil {
				return err
			}

			logger := slog.Default()
			conn, err := mq.Dial(mq.ConnectionConfig{
				URL:    amqpURL,
				Logger: logger,
				Setup:  mq.DeclareTopology,
			})
			if err != nil {
				return fmt.Errorf("connect to RabbitMQ: %w", err)
			}
			defer conn.Close()

			out := outputFn()
			out.Notice("Watching %s (Ctrl+C to stop)", mq.QueueAudit)

			consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
				Queue:   mq.QueueAudit,
				Handler: eventPrinter(out),
				Types:   filter,
			})

			err = consumer.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&amqpURL, "amqp-url", mq.DefaultURL(), "RabbitMQ URL")
	cmd.Flags().StringSliceVar(&types, "type", nil, "Only show these event types, e.g. template.used (repeatable)")

	return cmd
}

// parseEventTypes проверяет значения --type.
func parseEventTypes(values []string) ([]catalog.EventType, error) {
	known := catalog.EventTypes()
	types := make([]catalog.EventType, 0, len(values))
	for _, v := range values {
		t := catalog.EventType(v)
		if !slices.Contains(known, t) {
			return nil, fmt.Errorf("unknown event type %q", v)
		}
		types = append(types, t)
	}
	return types, nil
}

// eventPrinter выводит каждое событие отдельной строкой.
func eventPrinter(out *Output) mq.EventHandler {
	return func(_ context.Context, event catalog.Event, meta mq.EventMeta) error {
		return out.Event(meta, event)
	}
}
