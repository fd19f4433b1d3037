package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"rental-server/cache"
	"rental-server/confs"
	"rental-server/db"
	"rental-server/events"
	"rental-server/mq"
	"rental-server/obs"
	"rental-server/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// load config
	cfg, err := confs.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	shutdownTracer, err := obs.InitTracer(ctx, "rental-server", cfg.Env, cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(tctx); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	// connect to database
	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer database.Close()

	var propertyCache cache.PropertyCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		propertyCache = cache.NewRedisCache(rdb, cfg.PropertyCacheTTL)
		log.Println("Using Redis property cache")
	} else {
		propertyCache = cache.NewMemoryCache(cfg.PropertyCacheTTL)
		log.Println("Using in-memory property cache")
	}

	bus := events.NewBus()
	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer pub.Close()
		bus.Subscribe(events.All, mq.Forwarder(pub, 5*time.Second))
		log.Printf("Forwarding domain events to exchange %s", cfg.RabbitExchange)
	}

	// run server
	srv := server.NewServer(cfg, database, propertyCache, bus)
	if err := srv.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
	}
}
