package app

import (
	"context"
	"docshare/internal/cache/redis"
	"docshare/internal/clock"
	"docshare/internal/config"
	"docshare/internal/dbs/postgres"
	"docshare/internal/models"
	memorycache "docshare/internal/repositories/cache/memory"
	cachepermissionrepo "docshare/internal/repositories/cache/permission"
	cachesessionrepo "docshare/internal/repositories/cache/session"
	accessrepo "docshare/internal/repositories/db/access"
	documentrepo "docshare/internal/repositories/db/document"
	grantrepo "docshare/internal/repositories/db/grant"
	sharerepo "docshare/internal/repositories/db/share"
	userrepo "docshare/internal/repositories/db/user"
	"docshare/internal/repositories/storage"
	accessservice "docshare/internal/services/access"
	auditservice "docshare/internal/services/audit"
	authservice "docshare/internal/services/auth"
	documentservice "docshare/internal/services/document"
	sharingservice "docshare/internal/services/sharing"
	userservice "docshare/internal/services/user"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const memoryCacheSize = 10000

type permissionCache interface {
	Get(ctx context.Context, subjectID string, perm models.Permission, documentID string) (bool, bool, error)
	Put(ctx context.Context, subjectID string, perm models.Permission, documentID string, value bool, ttl time.Duration) error
	InvalidateDocument(ctx context.Context, documentID string) error
	InvalidateSubject(ctx context.Context, subjectID string, documentID string) error
}

type App struct {
	AuthService     *authservice.AuthService
	UserService     *userservice.UserService
	DocumentService *documentservice.DocumentService
	SharingManager  *sharingservice.Manager

	db    *sqlx.DB
	cache *redis.Client
}

func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := postgres.New(ctx, postgres.Config{
		Addr:     cfg.DB.Addr,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DB:       cfg.DB.DB,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		log.Error("failed connect to db", "err", err)
		return nil, fmt.Errorf("failed connect to db: %w", err)
	}

	if cfg.DB.Migrate {
		if err := postgres.Migrate(db, cfg.DB.DB); err != nil {
			db.Close()
			log.Error("failed to migrate db", "err", err)
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		log.Info("migrations applied")
	}

	cache, err := redis.New(ctx, redis.Config{
		Addr:         cfg.Cache.Addr,
		Password:     cfg.Cache.Password,
		DB:           cfg.Cache.DB,
		PoolSize:     cfg.Cache.PoolSize,
		DialTimeout:  cfg.Cache.Timeout,
		ReadTimeout:  cfg.Cache.Timeout,
		WriteTimeout: cfg.Cache.Timeout,
	})
	if err != nil {
		db.Close()
		log.Error("failed connect to cache", "err", err)
		return nil, fmt.Errorf("failed connect to cache: %w", err)
	}

	blobs, err := storage.New(ctx, cfg.FileStorage)
	if err != nil {
		db.Close()
		cache.Close()
		log.Error("failed to init file storage", "err", err)
		return nil, fmt.Errorf("failed to init file storage: %w", err)
	}

	clk := clock.Real{}
	ids := clock.UUIDGenerator{}

	permCache, err := newPermissionCache(cfg.Cache, cache, clk)
	if err != nil {
		db.Close()
		cache.Close()
		return nil, err
	}
	log.Info("permission cache selected", slog.String("backend", cfg.Cache.Backend))

	userRepo := userrepo.NewRepository(db)
	docRepo := documentrepo.NewRepository(db)
	shareRepo := sharerepo.NewRepository(db)
	grantRepo := grantrepo.NewRepository(db)
	eventRepo := accessrepo.NewRepository(db)

	sessionCacheRepo := cachesessionrepo.New(cache, cfg.Cache.SessionTTL)

	userService := userservice.New(log, userRepo, userRepo)

	authService := authservice.New(log, userService, userService, sessionCacheRepo, ids, cfg.AdminToken)

	resolver := accessservice.New(log, grantRepo, shareRepo, userService, permCache, clk, accessservice.Options{
		AdminGroup:     cfg.Sharing.AdminGroup,
		CreatorGroups:  cfg.Sharing.CreatorGroups,
		PermissionTTL:  cfg.Cache.PermissionTTL,
		GroupTTL:       cfg.Cache.GroupTTL,
		GroupCacheSize: cfg.Cache.GroupCacheSize,
		Timeout:        cfg.DB.QueryTimeout,
		PublicDownload: cfg.Sharing.PublicDownload,
	})

	recorder := auditservice.New(log, eventRepo, clk, ids)

	sharingManager := sharingservice.New(log, shareRepo, grantRepo, userRepo, docRepo, resolver, permCache, recorder, clk, ids,
		sharingservice.Options{MaxBulkRecipients: cfg.Sharing.MaxBulkRecipients})

	documentService := documentservice.New(log, docRepo, shareRepo, userRepo, blobs, resolver, permCache, recorder, clk, ids,
		documentservice.Options{ConcealForbidden: cfg.Sharing.ConcealForbidden})

	return &App{
		AuthService:     authService,
		UserService:     userService,
		DocumentService: documentService,
		SharingManager:  sharingManager,
		db:              db,
		cache:           cache,
	}, nil
}

// Close releases the database and redis connections.
func (a *App) Close() error {
	return errors.Join(a.db.Close(), a.cache.Close())
}

func newPermissionCache(cfg config.Cache, client *redis.Client, clk clock.Clock) (permissionCache, error) {
	switch cfg.Backend {
	case "", "redis":
		return cachepermissionrepo.New(client), nil
	case "memory":
		mem := memorycache.New(memoryCacheSize, cfg.PermissionTTL, clk)
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "docshare_permission_cache_entries",
			Help: "Permission verdicts held by the in-process cache.",
		}, func() float64 { return float64(mem.Len()) })
		return mem, nil
	case "none":
		return memorycache.NewNop(), nil
	default:
		return nil, fmt.Errorf("unknown permission cache backend: %s", cfg.Backend)
	}
}
