package repository

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// Options selects and configures the storage backend
type Options struct {
	Storage  string
	MongoURI string
	Database string
}

// Open returns the repository chosen by opts and a function releasing its
// resources. The mongo backend has its indexes bootstrapped before use.
func Open(ctx context.Context, opts Options, logger hclog.Logger) (ProductRepository, func(context.Context) error, error) {
	switch opts.Storage {
	case StorageMemory:
		logger.Info("Using in-memory storage")
		return NewMemoryProductRepository(), func(context.Context) error { return nil }, nil

	case StorageMongo, "":
		logger.Info("Connecting to MongoDB", "database", opts.Database)
		client, err := Connect(ctx, opts.MongoURI)
		if err != nil {
			return nil, nil, err
		}

		if err := Migrate(client, opts.Database, logger.Named("migrate")); err != nil {
			client.Disconnect(ctx)
			return nil, nil, err
		}

		return NewMongoProductRepository(client.Database(opts.Database)), client.Disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage %q", opts.Storage)
	}
}
