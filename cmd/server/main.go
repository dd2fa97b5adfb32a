package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ritikraj007/FraudDetectionAI/internal/api"
	"github.com/Ritikraj007/FraudDetectionAI/internal/auth"
	"github.com/Ritikraj007/FraudDetectionAI/internal/config"
	"github.com/Ritikraj007/FraudDetectionAI/internal/datasource"
	"github.com/Ritikraj007/FraudDetectionAI/internal/ingest"
	"github.com/Ritikraj007/FraudDetectionAI/internal/query"
	"github.com/Ritikraj007/FraudDetectionAI/internal/repository/postgres"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Telecom fraud monitoring server (cmd/server/main.go)")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Initialize import-state stores (recovers persisted batch/selector)
	registry, err := datasource.NewRegistry(cfg.Import.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize data-source registry: %v", err)
	}
	catalog, err := datasource.NewCatalog(cfg.Import.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize file catalog: %v", err)
	}
	log.Printf("Import state recovered: source=%s, batch=%d records, files=%d",
		registry.CurrentSource(), len(registry.Batch()), len(catalog.List()))

	pipeline := ingest.NewPipeline(cfg.Import.UploadDir, registry, catalog)

	// Live store: Postgres when configured, in-memory otherwise
	var liveStore query.LiveStore
	if cfg.Database.Enabled && cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			log.Printf("Warning: database ping failed: %v (queries will retry on demand)", err)
		} else {
			log.Println("Database connected")
		}
		pingCancel()
		defer db.Close()

		liveStore = postgres.NewActivityRepo(db)
	} else {
		log.Println("No database configured — live store is in-memory")
		liveStore = query.NewMemoryStore()
	}

	querySvc := query.NewService(registry, liveStore)

	// Session store: Redis when configured, in-memory otherwise
	var authManager *auth.Manager
	if cfg.Auth.Enabled {
		var sessionStore auth.SessionStore
		if cfg.Redis.URL != "" {
			opts, err := redis.ParseURL(cfg.Redis.URL)
			var redisClient *redis.Client
			if err != nil {
				redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
			} else {
				redisClient = redis.NewClient(opts)
			}
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := redisClient.Ping(pingCtx).Err(); err != nil {
				log.Printf("Warning: Redis connection failed (%s): %v — falling back to in-memory sessions", cfg.Redis.URL, err)
				redisClient.Close()
			} else {
				sessionStore = auth.NewRedisStore(redisClient)
				defer redisClient.Close()
				log.Printf("Redis connected: sessions are shared")
			}
			pingCancel()
		}
		if sessionStore == nil {
			memStore := auth.NewMemoryStore()
			go func() {
				ticker := time.NewTicker(10 * time.Minute)
				defer ticker.Stop()
				for range ticker.C {
					if n := memStore.CleanupExpired(); n > 0 {
						log.Printf("Cleaned up %d expired sessions", n)
					}
				}
			}()
			sessionStore = memStore
		}
		authManager = auth.NewManager(cfg.Auth, sessionStore)
		log.Printf("Authentication enabled for user %q", cfg.Auth.Username)
	} else {
		log.Println("Authentication disabled")
	}

	handlers := api.NewHandlers(pipeline, registry, catalog, querySvc, cfg)
	server := api.NewServer(cfg, handlers, authManager)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
