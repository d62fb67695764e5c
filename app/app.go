package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"ekta-storefront/app/controller"
	"ekta-storefront/app/router"
	"ekta-storefront/config"
	"ekta-storefront/data"
	"ekta-storefront/pricing"
	"ekta-storefront/repository"
	"ekta-storefront/service"
	"ekta-storefront/session"
	"ekta-storefront/storage"
)

// Storefront wires the stores, services and routes of the shop
type Storefront struct {
	Handler http.Handler

	Catalog     *service.CatalogService
	Carts       *service.CartRegistry
	Wishlists   *service.WishlistRegistry
	Preferences *service.PreferenceRegistry

	limiter *router.RateLimiter
	janitor *service.Janitor
	closers []func() error
}

// Dependencies are the external resources a Storefront runs on.
// DB may be nil; preference and notification endpoints then answer 503.
type Dependencies struct {
	DB    *sql.DB
	Store storage.KeyValueStore
}

// OpenStore returns the key-value store for wishlists and push flags:
// Redis when REDIS_ADDR is set, otherwise a JSON file under LOCAL_STORE_DIR
func OpenStore(ctx context.Context, cfg *config.Config) (storage.KeyValueStore, func() error, error) {
	if cfg.RedisAddr != "" {
		rs := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Printf("✓ Using redis store at %s", cfg.RedisAddr)
		return rs, rs.Close, nil
	}

	fs, err := storage.NewFileStore(cfg.LocalStoreDir)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("✓ Using file store in %s", cfg.LocalStoreDir)
	return fs, func() error { return nil }, nil
}

// openImageSource returns the Google Drive folder when GOOGLE_DRIVE_FOLDER_ID is set,
// otherwise the local assets directory
func openImageSource(ctx context.Context, cfg *config.Config) (service.ImageSource, error) {
	if cfg.DriveFolderID == "" {
		log.Printf("✓ Serving product images from %s", cfg.AssetsDir)
		return service.NewDirImageSource(cfg.AssetsDir), nil
	}
	drive, err := service.NewDriveImageSource(ctx, cfg.DriveCredentials, cfg.DriveFolderID)
	if err != nil {
		return nil, err
	}
	log.Printf("✓ Serving product images from drive folder %s", cfg.DriveFolderID)
	return drive, nil
}

// New builds a Storefront from cfg and deps
func New(cfg *config.Config, deps Dependencies) (*Storefront, error) {
	products, err := service.LoadCatalog(data.CatalogYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog := service.NewCatalogService(products)

	engine, err := pricing.LoadEngine(cfg.ShippingConfigPath)
	if err != nil {
		return nil, err
	}

	var prefRepo repository.PreferenceRepositoryInterface
	var notifRepo repository.NotificationRepositoryInterface
	if deps.DB != nil {
		prefRepo = repository.NewPreferenceRepository(deps.DB)
		notifRepo = repository.NewNotificationRepository(deps.DB)
	}

	store := deps.Store
	if store == nil {
		store = storage.NewMemoryStore()
	}

	source, err := openImageSource(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	images := service.NewImageService(catalog, source, cfg.ImageCacheDir)
	if err := images.EnsureCacheDir(); err != nil {
		log.Printf("⚠️  %v", err)
	}
	lookbook, err := service.NewLookbookService(catalog, images, data.LookbookTemplate, cfg.ChromePath)
	if err != nil {
		return nil, err
	}

	carts := service.NewCartRegistry()
	wishlists := service.NewWishlistRegistry(store)
	preferences := service.NewPreferenceRegistry(prefRepo)
	notifications := service.NewNotificationService(notifRepo)
	checkout := service.NewCheckoutService(engine, notifications)

	controllers := &router.Controllers{
		Catalog:      controller.NewCatalogController(catalog, images),
		Lookbook:     controller.NewLookbookController(lookbook),
		Cart:         controller.NewCartController(carts, catalog),
		Wishlist:     controller.NewWishlistController(wishlists, carts, catalog),
		Preference:   controller.NewPreferenceController(preferences),
		Push:         controller.NewPushController(service.NewPushService(), store),
		Notification: controller.NewNotificationController(notifications),
		Checkout:     controller.NewCheckoutController(checkout, carts),
	}

	sessions := session.NewManager(cfg.JWTSecret, cfg.IsProduction())
	limiter := router.NewRateLimiter(cfg.NotifyRatePerSecond, cfg.NotifyBurst)
	janitor := service.NewJanitor(cfg.SessionIdleTTL, janitorInterval(cfg.SessionIdleTTL), carts, wishlists)
	janitor.Start()

	log.Printf("✓ Storefront ready with %d products", len(products))
	return &Storefront{
		Handler:     router.SetupRoutes(http.NewServeMux(), controllers, sessions, limiter),
		Catalog:     catalog,
		Carts:       carts,
		Wishlists:   wishlists,
		Preferences: preferences,
		limiter:     limiter,
		janitor:     janitor,
	}, nil
}

// janitorInterval sweeps a few times per idle window, at most once a minute
func janitorInterval(idle time.Duration) time.Duration {
	interval := idle / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

// OnClose registers fn to run when the Storefront is closed
func (s *Storefront) OnClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close tears down the preference stores and background work, then runs the OnClose hooks
func (s *Storefront) Close() error {
	s.Preferences.Close()
	s.limiter.Close()
	s.janitor.Close()

	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
