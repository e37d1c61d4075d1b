package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-notes-assistant/internal/bootstrap"
	"ai-notes-assistant/internal/config"
	"ai-notes-assistant/internal/service"
	"ai-notes-assistant/internal/tracer"
	pktNats "ai-notes-assistant/pkg/nats"
)

// The worker indexes notes from the NATS lifecycle stream and runs the
// reindex sweeper, so the API can run with INDEXING_MODE=nats.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if cfg.App.NatsURL == "" {
		log.Fatal("NATS_URL is required for the worker")
	}
	if cfg.Lock.Provider != "redis" {
		log.Fatal("LOCK_PROVIDER=redis is required for the worker, the API indexes the same notes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := bootstrap.OpenDatabase(cfg)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// The worker never feeds the in-process queue.
	cfg.Indexing.Mode = "none"
	cfg.App.InboxDir = ""
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg)
	if err != nil {
		log.Panicf("Unable to build container: %v", err)
	}
	defer container.Close()

	shutdownTracer := tracer.InitTracer(cfg.App, container.Logger)
	defer shutdownTracer(context.Background())

	subscriber, err := pktNats.NewSubscriber(cfg.App.NatsURL, container.Logger)
	if err != nil {
		log.Panicf("Unable to connect to NATS: %v", err)
	}
	defer subscriber.Close()

	consumer := service.NewIndexEventConsumer(subscriber, container.IndexingService, container.Logger)
	if err := consumer.Start(ctx); err != nil {
		log.Panicf("Unable to subscribe: %v", err)
	}

	go container.ReindexWorker.Start(ctx)

	container.Logger.Info("WORKER", "Worker started", map[string]interface{}{"durable": service.IndexConsumerDurable})
	<-ctx.Done()
	container.Logger.Info("WORKER", "Worker stopping", nil)
}
