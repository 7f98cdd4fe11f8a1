package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/events"
	"github.com/kahvecikaan/product-catalog/internal/health"
	"github.com/kahvecikaan/product-catalog/internal/repository"
	"github.com/kahvecikaan/product-catalog/internal/service"
	httpTransport "github.com/kahvecikaan/product-catalog/internal/transport/http"
	websocketTransport "github.com/kahvecikaan/product-catalog/internal/transport/websocket"
	"github.com/nicholasjackson/env"
	"google.golang.org/grpc"
)

// Environment variables
var (
	bindAddress = env.String("BIND_ADDRESS", false,
		":9090", "Bind address for the server")
	logLevel = env.String("LOG_LEVEL", false,
		"debug", "Log output level for the server [debug, info, trace]")
	storage = env.String("STORAGE", false,
		repository.StorageMongo, "Storage backend [mongo, memory]")
	mongoURI = env.String("MONGO_URI", false,
		"mongodb://localhost:27017", "MongoDB connection string")
	mongoDatabase = env.String("MONGO_DATABASE", false,
		"catalog", "MongoDB database holding the products collection")
	grpcHealthAddress = env.String("GRPC_HEALTH_ADDRESS", false,
		":9092", "Bind address for the gRPC health service")
	maxImportBytes = env.Int("MAX_IMPORT_BYTES", false,
		int(httpTransport.DefaultMaxImportBytes), "Maximum size of an uploaded import file")
	corsOrigins = env.String("CORS_ORIGINS", false,
		"*", "Comma separated list of allowed CORS origins")
)

func main() {
	env.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "product-api",
		Level: hclog.LevelFromString(*logLevel),
	})

	// Create a standard logger for the HTTP server
	standardLogger := logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	repo, closeRepo, err := repository.Open(startCtx, repository.Options{
		Storage:  *storage,
		MongoURI: *mongoURI,
		Database: *mongoDatabase,
	}, logger.Named("repository"))
	startCancel()
	if err != nil {
		logger.Error("Unable to open storage", "storage", *storage, "error", err)
		os.Exit(1)
	}

	// shared by the service and the websocket feed
	eventBus := events.NewEventBus[any]()

	validator := domain.NewValidation()

	ps := service.NewProductService(
		repo,
		eventBus,
		validator,
		logger.Named("product-service"),
	)

	ph := httpTransport.NewProductHandler(ps, logger.Named("http-handler"), int64(*maxImportBytes))

	wh := websocketTransport.NewHandler(
		logger.Named("websocket-handler"),
		eventBus,
	)

	router := httpTransport.NewRouter(ph, wh, validator, logger, httpTransport.RouterConfig{
		AllowedOrigins: splitList(*corsOrigins),
	})

	server := &http.Server{
		Addr:         *bindAddress,
		Handler:      router,
		ErrorLog:     standardLogger,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// gRPC health service following storage reachability
	monitorCtx, monitorCancel := context.WithCancel(context.Background())
	monitor := health.NewMonitor(repo, 10*time.Second, logger.Named("health"))
	go monitor.Run(monitorCtx)

	grpcServer := grpc.NewServer()
	monitor.Register(grpcServer)

	lis, err := net.Listen("tcp", *grpcHealthAddress)
	if err != nil {
		logger.Error("Unable to listen for gRPC health", "address", *grpcHealthAddress, "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("Starting gRPC health service", "bind_address", *grpcHealthAddress)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Error serving gRPC health", "error", err)
		}
	}()

	go func() {
		logger.Info("Starting server", "bind_address", *bindAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Error starting server", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutting down server", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	monitorCancel()
	grpcServer.GracefulStop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", "error", err)
	}

	if err := closeRepo(shutdownCtx); err != nil {
		logger.Error("Error closing storage", "error", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
