package store

import (
	"context"
	"fmt"

	"github.com/antopolskiy/taskboard/internal/config"
)

// Open builds the adapter selected by cfg. The returned close function
// releases the adapter's resources and is safe to call once.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (Store, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return NewMemory(opts...), func() {}, nil
	case config.DriverFile, "":
		return NewFileStore(cfg.TasksPath(), opts...), func() {}, nil
	case config.DriverPostgres:
		pg, err := OpenPg(ctx, cfg.Store.DSN, opts...)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store.driver %q", config.ErrInvalid, cfg.Store.Driver)
	}
}
