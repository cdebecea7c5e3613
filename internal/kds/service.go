package kds

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/arielhotels/roomstock/internal/kafka"
	"github.com/arielhotels/roomstock/internal/redisx"
	"github.com/arielhotels/roomstock/internal/tickets"
)

// Service keeps the kitchen display's open-ticket board in redis, fed from
// the ticket lifecycle topics. The display UI itself only polls the hash.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleTicketEvent is the consumer handler for all three ticket topics.
func (s *Service) HandleTicketEvent(ctx context.Context, m kafkago.Message) error {
	var env kafkax.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event id across redeliveries
	dkey := fmt.Sprintf(redisx.KeyDedup, "kds", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case tickets.EventTicketOpened:
		p, err := kafkax.UnwrapPayload[tickets.TicketOpenedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.Redis.HSet(ctx, redisx.KeyKDSOpen, p.RoomNumber, string(env.Payload)).Err()

	case tickets.EventTicketItemsAdded:
		p, err := kafkax.UnwrapPayload[tickets.TicketItemsAddedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.Redis.HSet(ctx, redisx.KeyKDSOpen, p.RoomNumber, string(env.Payload)).Err()

	case tickets.EventTicketCompleted:
		p, err := kafkax.UnwrapPayload[tickets.TicketCompletedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.Redis.HDel(ctx, redisx.KeyKDSOpen, p.RoomNumber).Err()
	}
	return nil
}
