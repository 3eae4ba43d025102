package main

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"github.com/ecodao/sigil/adapters/blob"
	"github.com/ecodao/sigil/adapters/events"
	"github.com/ecodao/sigil/adapters/pin"
	"github.com/ecodao/sigil/adapters/store"
	"github.com/ecodao/sigil/adapters/tokenizer"
	"github.com/ecodao/sigil/internal/config"
	"github.com/ecodao/sigil/internal/logger"
	"github.com/ecodao/sigil/ports"
	"github.com/ecodao/sigil/service"
	transport "github.com/ecodao/sigil/transport/http"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logg := logger.New(cfg.LogLevel)

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logg.Fatal("failed to parse Redis URL", "error", err)
	}
	redisClient := redis.NewClient(opts)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logg.Fatal("failed to create object storage client", "error", err)
	}

	blobStore, err := blob.NewMinioStore(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logg.Fatal("failed to initialize blob store", "error", err)
	}

	wmLogger := watermill.NewStdLogger(false, false)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		wmLogger,
	)
	if err != nil {
		logg.Fatal("failed to create event publisher", "error", err)
	}

	var pinner ports.Pinner = pin.NoopPinner{}
	if cfg.Pinner.Endpoint != "" {
		pinner = pin.NewHTTPPinner(cfg.Pinner.Endpoint, cfg.Pinner.Token, cfg.Pinner.Timeout)
	}

	kvStore := store.NewRedisStore(redisClient)
	eventPub := events.NewWatermillPublisher(publisher)
	tk := tokenizer.NewJWTTokenizer(cfg.Auth.Secret, cfg.Auth.SessionTTL)

	profileService := service.NewProfileService(kvStore, blobStore, pinner, eventPub, logg)
	authService := service.NewAuthService(tk, kvStore, eventPub, profileService, logg, service.AuthConfig{
		Domain:   cfg.Challenge.Domain,
		URI:      cfg.Challenge.URI,
		ChainID:  cfg.Challenge.ChainID,
		NonceTTL: cfg.Challenge.NonceTTL,
	})

	router := transport.SetupRouter(authService, profileService, kvStore, cfg.RateLimit, logg)

	logg.Info("starting server", "addr", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		logg.Fatal("failed to start server", "error", err)
	}
}
