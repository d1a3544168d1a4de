// Package config provides centralized configuration management for the
// bookmark pipeline services through environment variables with sensible
// defaults.
//
// # Overview
//
// The config package loads application configuration from environment
// variables, providing a single source of truth for all pipeline services
// including:
//   - Postgres connection string
//   - Embedding store location and vector dimensionality
//   - AI provider credentials and model selection
//   - Rate limiting and concurrency knobs per agent
//   - Browser pool capacity
//   - HTTP surface ports (discovery, admin)
//   - Observability stack endpoints (Jaeger, Prometheus)
//   - Service metadata (name, version, environment)
//
// All configuration values have sensible defaults, so services can run
// without any environment variable configuration beyond ANTHROPIC_API_KEY.
//
// # Quick Start
//
// Load configuration in your service:
//
//	cfg := config.Load()
//	fmt.Printf("Postgres: %s\n", cfg.PostgresDSN)
//	fmt.Printf("Jaeger: %s\n", cfg.JaegerEndpoint)
//	fmt.Printf("Environment: %s\n", cfg.Environment)
//
// # Configuration Fields
//
// **Store Configuration**:
//   - BOOKMARKHUB_POSTGRES_DSN: Postgres connection string
//
// **Embedding Store Configuration**:
//   - BOOKMARKHUB_EMBED_STORE_PATH: on-disk path for the vector store
//   - BOOKMARKHUB_EMBEDDING_DIMS: embedding vector dimensionality
//
// **AI Configuration**:
//   - ANTHROPIC_API_KEY: Anthropic API key (no default; falls back to a
//     mock completion client when unset)
//   - ANTHROPIC_MODEL: Anthropic model name
//
// **Rate Limiting and Concurrency**:
//   - BOOKMARKHUB_ENRICHMENT_RATE_LIMIT: enrichment calls per minute
//   - BOOKMARKHUB_ENRICHMENT_CONCURRENCY: concurrent enrichment workers
//   - BOOKMARKHUB_EMBEDDING_BATCH_SIZE: bookmarks embedded per batch
//   - BOOKMARKHUB_EMBEDDING_PARALLEL_BATCHES: concurrent embedding batches
//
// **Browser Pool Configuration**:
//   - BOOKMARKHUB_BROWSER_POOL_CAPACITY: max concurrent headless sessions
//
// **HTTP Surface Ports**:
//   - BOOKMARKHUB_DISCOVERY_PORT: discovery server port (default: "8090")
//   - BOOKMARKHUB_ADMIN_PORT: admin server port (default: "8091")
//   - BOOKMARKHUB_HEALTH_PORT: health/ready/metrics server port (default: "8092")
//
// **Capability Card Staleness**:
//   - BOOKMARKHUB_CAPABILITY_HEARTBEAT_SECONDS: registry staleness window
//
// **Observability Stack**:
//   - JAEGER_ENDPOINT: Jaeger OTLP endpoint (default: "127.0.0.1:4317")
//   - PROMETHEUS_PORT: Prometheus port (default: "9090")
//
// **Service Metadata**:
//   - SERVICE_NAME: Service name for observability (default: "bookmarkhub-service")
//   - SERVICE_VERSION: Service version (default: "1.0.0")
//   - ENVIRONMENT: Deployment environment (default: "development")
//   - LOG_LEVEL: Logging level - DEBUG, INFO, WARN, ERROR (default: "INFO")
//
// # Usage Examples
//
// **Custom Environment**:
//
//	// Set environment variables
//	os.Setenv("BOOKMARKHUB_POSTGRES_DSN", "postgres://prod/bookmarkhub")
//	os.Setenv("ANTHROPIC_API_KEY", "sk-ant-...")
//	os.Setenv("ENVIRONMENT", "production")
//	os.Setenv("LOG_LEVEL", "WARN")
//
//	cfg := config.Load()
//	// Uses production values
//
// **Observability URLs**:
//
//	cfg := config.Load()
//	prometheus := cfg.GetPrometheusURL()  // "http://localhost:9090"
//
// # Configuration Precedence
//
// Configuration is loaded in this order:
//  1. Environment variables (if set)
//  2. Default values (if not set)
//
// # Development vs Production
//
// **Development (defaults)**:
//
//	ENVIRONMENT=development
//	BOOKMARKHUB_POSTGRES_DSN=postgres://localhost:5432/bookmarkhub?sslmode=disable
//	LOG_LEVEL=INFO
//
// **Production (recommended)**:
//
//	ENVIRONMENT=production
//	BOOKMARKHUB_POSTGRES_DSN=postgres://bookmarkhub.prod.internal:5432/bookmarkhub
//	LOG_LEVEL=WARN
//	SERVICE_VERSION=1.2.3
//
// # Integration with Other Packages
//
// The config package is used by:
//
// **observability.NewObservability()**:
//
//	cfg := config.Load()
//	obs, err := observability.NewObservability(observability.Config{
//	    ServiceName:    cfg.ServiceName,
//	    ServiceVersion: cfg.ServiceVersion,
//	    JaegerEndpoint: cfg.JaegerEndpoint,
//	    PrometheusPort: cfg.PrometheusPort,
//	    Environment:    cfg.Environment,
//	    LogLevel:       cfg.LogLevel,
//	})
//
// **cmd/taskrunner**:
//
//	// Uses BOOKMARKHUB_POSTGRES_DSN, ANTHROPIC_API_KEY, and the rate-limit
//	// and pool-capacity fields to wire the store and the five pipeline agents
//	cfg := config.Load()
//
// # Best Practices
//
// **Use Load() once per service**:
//
//	// In main.go
//	cfg := config.Load()
//	// Pass to components that need it
//
// **Don't mutate AppConfig**:
//
//	// AppConfig is a read-only snapshot of environment at startup
//	cfg := config.Load()
//	// Don't modify config fields after loading
//
// # Thread Safety
//
// AppConfig is safe to read from multiple goroutines once loaded.
// Do not modify AppConfig fields after calling Load().
package config
