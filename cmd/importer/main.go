// Command importer loads a JSON array of products from a file into the
// catalog storage.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/events"
	"github.com/kahvecikaan/product-catalog/internal/repository"
	"github.com/kahvecikaan/product-catalog/internal/service"
	flag "github.com/spf13/pflag"
)

func main() {
	var (
		file     string
		mongoURI string
		database string
		level    string
		timeout  time.Duration
	)

	flag.StringVarP(&file, "file", "f", "", "path to a JSON array of products")
	flag.StringVar(&mongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB connection string")
	flag.StringVar(&database, "database", "catalog", "MongoDB database holding the products collection")
	flag.StringVar(&level, "log-level", "info", "log output level [debug, info, trace]")
	flag.DurationVar(&timeout, "timeout", time.Minute, "overall import timeout")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "importer",
		Level: hclog.LevelFromString(level),
	})

	if file == "" {
		fmt.Fprintln(os.Stderr, "--file is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(file, mongoURI, database, timeout, logger); err != nil {
		logger.Error("Import failed", "file", file, "error", err)
		os.Exit(1)
	}
}

func run(path, mongoURI, database string, timeout time.Duration, logger hclog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	repo, closeRepo, err := repository.Open(ctx, repository.Options{
		Storage:  repository.StorageMongo,
		MongoURI: mongoURI,
		Database: database,
	}, logger.Named("repository"))
	if err != nil {
		return err
	}
	defer closeRepo(context.Background())

	ps := service.NewProductService(repo, events.NewEventBus[any](), domain.NewValidation(), logger.Named("product-service"))

	n, err := ps.ImportProducts(ctx, f)
	if err != nil {
		return err
	}

	logger.Info("Imported products", "count", n, "file", path)
	return nil
}
