package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arielhotels/roomstock/internal/config"
	kafkax "github.com/arielhotels/roomstock/internal/kafka"
	"github.com/arielhotels/roomstock/internal/kds"
	"github.com/arielhotels/roomstock/internal/redisx"
	"github.com/arielhotels/roomstock/internal/tickets"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &kds.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-kds",
	}

	group := getenv("KDS_GROUP", "kds-feed")
	workers := mustAtoi(os.Getenv("KDS_WORKERS"), "4")

	topics := []string{
		tickets.TopicTicketOpened,
		tickets.TopicTicketItemsAdded,
		tickets.TopicTicketCompleted,
	}
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func(topic string) {
			log.Printf("kds consumer started: group=%s topic=%s workers=%d", group, topic, workers)
			if err := cons.Start(ctx, svc.HandleTicketEvent); err != nil {
				log.Printf("consumer %s exit: %v", topic, err)
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down kds feed...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
