package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"seungpyo.lee/BlogBoard/internal/config"
	"seungpyo.lee/BlogBoard/internal/database"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/handler"
	"seungpyo.lee/BlogBoard/internal/repository"
	"seungpyo.lee/BlogBoard/internal/service"
	"seungpyo.lee/BlogBoard/pkg/jwt"
	"seungpyo.lee/BlogBoard/pkg/logger"
)

func main() {
	conf, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg := logger.New(conf.LogLevel)
	gin.SetMode(conf.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.OptionsFromConfig(conf), lg)
	if err != nil {
		lg.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		lg.Fatalf("failed to migrate database: %v", err)
	}

	var tokens domain.TokenRepository
	switch conf.TokenStore {
	case config.TokenStoreRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:       conf.RedisAddr(),
			Password:   conf.RedisDBPassword,
			DB:         0, // use default DB
			MaxRetries: conf.RedisMaxRetries,
			PoolSize:   conf.RedisPoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			lg.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		tokens = repository.NewRedisTokenRepository(redisClient, time.Now)
	default:
		tokens = repository.NewTokenRepository(db)
	}

	var (
		blobs     domain.BlobStore
		uploadDir string
	)
	switch conf.ImageStorage {
	case config.ImageStorageAzure:
		blobs, err = repository.NewAzureBlobStore(ctx, conf.AzureStorageConnectionString, conf.BlobContainerName)
	default:
		blobs, err = repository.NewLocalBlobStore(conf.UploadDir, conf.UploadBaseURL)
		uploadDir = conf.UploadDir
	}
	if err != nil {
		lg.Fatalf("failed to set up image storage: %v", err)
	}

	tokenManager := jwt.NewTokenManager(conf.JWTSecretKey)
	posts := repository.NewPostRepository(db)
	authSvc := service.NewAuthService(service.AuthDeps{
		Users:        repository.NewUserRepository(db),
		Tokens:       tokens,
		ResetTokens:  repository.NewResetTokenRepository(db),
		Notifier:     service.NewLogResetNotifier(conf.ResetURLBase, lg),
		TokenManager: tokenManager,
		Config:       conf,
		Logger:       lg,
	})
	postSvc := service.NewPostService(posts, conf.PopularLikeThreshold)
	commentSvc := service.NewCommentService(repository.NewCommentRepository(db), posts)
	imgSvc := service.NewImgService(repository.NewImgRepository(db), blobs, conf.UploadMaxBytes, lg)

	r := handler.NewRouter(handler.Handlers{
		Auth:    handler.NewAuthHandler(authSvc, lg),
		Post:    handler.NewPostHandler(postSvc, lg),
		Comment: handler.NewCommentHandler(commentSvc, lg),
		Img:     handler.NewImgHandler(imgSvc, conf.UploadMaxBytes, lg),
	}, tokenManager, handler.RouterConfig{
		CORSOrigins: conf.CORSOrigins,
		UploadDir:   uploadDir,
		UploadURL:   conf.UploadBaseURL,
	}, lg)

	go purgeExpiredTokens(ctx, tokens, conf.TokenPurgeInterval, lg)

	srv := &http.Server{Addr: ":" + conf.ServerPort, Handler: r}
	go func() {
		lg.Infof("server listening on %s (db=%s, tokens=%s, images=%s)", srv.Addr, conf.DBDriver, conf.TokenStore, conf.ImageStorage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalf("failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Errorf("server shutdown: %v", err)
	}
}

// purgeExpiredTokens removes expired refresh tokens every interval until ctx
// is cancelled.
func purgeExpiredTokens(ctx context.Context, tokens domain.TokenRepository, interval time.Duration, lg *logger.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := tokens.DeleteExpired(ctx, now)
			if err != nil {
				lg.Errorf("token purge failed: %v", err)
				continue
			}
			if n > 0 {
				lg.Infof("purged %d expired refresh tokens", n)
			}
		}
	}
}
