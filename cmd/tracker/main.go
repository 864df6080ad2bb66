package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ansdeepu/kerala-rides/internal/config"
	"github.com/ansdeepu/kerala-rides/internal/db"
	"github.com/ansdeepu/kerala-rides/internal/handlers"
	"github.com/ansdeepu/kerala-rides/internal/live"
	"github.com/ansdeepu/kerala-rides/internal/metrics"
	"github.com/ansdeepu/kerala-rides/internal/publish"
	"github.com/ansdeepu/kerala-rides/internal/sim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := db.ConnectMongo()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	log.Info("Connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	routes := &db.MongoRoutes{Collection: database.Collection("routes")}
	trips := &db.MongoTrips{Collection: database.Collection("trips")}

	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.TickInterval)
		srv := mcol.Serve(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	var pub sim.SnapshotPublisher
	if cfg.NATSURL != "" {
		np, err := publish.NewNATSPublisher(cfg.NATSURL, mcol)
		if err != nil {
			log.Fatalf("nats error: %v", err)
		}
		defer np.Close()
		pub = np
	}

	if cfg.MQTTBrokerURL != "" {
		sub := live.NewSubscriber(cfg.MQTTBrokerURL, cfg.MQTTTopic, routes, mcol)
		if err := sub.Start(); err != nil {
			log.Fatalf("mqtt error: %v", err)
		}
		defer sub.Stop()
	}

	runner := sim.NewRunner(routes, trips, pub, mcol, cfg.TickInterval, cfg.LiveWindow)
	runner.Location = cfg.Location
	go runner.Run(ctx)

	handler := handlers.NewRouteHandler(routes, trips, runner)
	router := handlers.NewRouter(handler, func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("Shutdown complete")
}
