package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arielhotels/roomstock/internal/catalog"
	"github.com/arielhotels/roomstock/internal/config"
	"github.com/arielhotels/roomstock/internal/httpx"
	kafkax "github.com/arielhotels/roomstock/internal/kafka"
	"github.com/arielhotels/roomstock/internal/pos"
	"github.com/arielhotels/roomstock/internal/postgres"
	"github.com/arielhotels/roomstock/internal/redisx"
	"github.com/arielhotels/roomstock/internal/syncstate"
	"github.com/arielhotels/roomstock/internal/tickets"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// POS client
	posClient := pos.NewHTTPClient(cfg.POSBaseURL, cfg.POSToken, cfg.POSTimeout)

	// Kafka producers, one per topic
	pOpened := kafkax.NewProducer(cfg.KafkaBrokers, tickets.TopicTicketOpened, 1024)
	pOpened.Start(ctx)
	pItems := kafkax.NewProducer(cfg.KafkaBrokers, tickets.TopicTicketItemsAdded, 1024)
	pItems.Start(ctx)
	pDone := kafkax.NewProducer(cfg.KafkaBrokers, tickets.TopicTicketCompleted, 1024)
	pDone.Start(ctx)

	// Wiring
	ticketRepo := &tickets.Repo{DB: db}
	manager := &tickets.Manager{
		Store: ticketRepo,
		POS:   posClient,
		Locks: &tickets.RedisRoomLocks{RDB: rdb},
	}
	catalogRepo := &catalog.Repo{DB: db}
	recorder := &syncstate.PGRecorder{DB: db}
	reconciler := &catalog.Reconciler{
		Store:        catalogRepo,
		POS:          posClient,
		Status:       recorder,
		Locks:        &catalog.RedisPassLock{RDB: rdb},
		Grace:        cfg.SyncGrace,
		HomeCurrency: cfg.HomeCurrency,
	}

	router := httpx.NewRouter()
	th := &httpx.TicketsHandler{
		Manager:           manager,
		Redis:             rdb,
		ProducerOpened:    pOpened,
		ProducerItems:     pItems,
		ProducerCompleted: pDone,
		Service:           cfg.ServiceName,
	}
	th.Register(router)
	ch := &httpx.CatalogHandler{
		Store:      catalogRepo,
		Reconciler: reconciler,
		Status:     recorder,
	}
	ch.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()
	pOpened.WaitClosed()
	pItems.WaitClosed()
	pDone.WaitClosed()
}
