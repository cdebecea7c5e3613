package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/arielhotels/roomstock/internal/catalog"
	"github.com/arielhotels/roomstock/internal/config"
	kafkax "github.com/arielhotels/roomstock/internal/kafka"
	"github.com/arielhotels/roomstock/internal/pos"
	"github.com/arielhotels/roomstock/internal/postgres"
	"github.com/arielhotels/roomstock/internal/redisx"
	"github.com/arielhotels/roomstock/internal/syncstate"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, catalog.TopicCatalogSynced, 64)
	prod.Start(ctx)

	reconciler := &catalog.Reconciler{
		Store:        &catalog.Repo{DB: db},
		POS:          pos.NewHTTPClient(cfg.POSBaseURL, cfg.POSToken, cfg.POSTimeout),
		Status:       &syncstate.PGRecorder{DB: db},
		Locks:        &catalog.RedisPassLock{RDB: rdb},
		Grace:        cfg.SyncGrace,
		HomeCurrency: cfg.HomeCurrency,
	}

	service := cfg.ServiceName + "-syncd"
	run := func() {
		passCtx, cancelPass := context.WithTimeout(ctx, cfg.SyncInterval)
		defer cancelPass()

		res, err := reconciler.Reconcile(passCtx)
		if errors.Is(err, catalog.ErrSyncRunning) {
			// another replica or an admin trigger holds the pass lock
			log.Printf("sync already running, skipping pass")
			return
		}
		payload := catalog.CatalogSyncedPayload{Result: res, Failed: err != nil}
		if err != nil {
			payload.Error = err.Error()
			log.Printf("catalog sync failed: %v (result %+v)", err, res)
		} else {
			log.Printf("catalog sync: added=%d updated=%d disabled=%d errors=%d",
				res.Added, res.Updated, res.Disabled, res.Errors)
		}

		ev := kafkax.Envelope{
			EventID:      uuid.NewString(),
			EventType:    catalog.EventCatalogSynced,
			EventVersion: 1,
			OccurredAt:   time.Now().UTC(),
			Producer:     service,
			Payload:      kafkax.MustMarshal(payload),
		}
		prod.Publish([]byte(catalog.ResourceProducts), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(catalog.EventCatalogSynced)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	log.Printf("syncd started: interval=%s grace=%s", cfg.SyncInterval, cfg.SyncGrace)
	run()

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			run()
		case <-sig:
			log.Println("shutting down syncd...")
			cancel()
			prod.WaitClosed()
			return
		}
	}
}
