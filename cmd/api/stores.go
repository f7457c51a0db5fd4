package main

import (
	"context"

	"github.com/samber/oops"

	"github.com/taskboard/taskboard-go/internal/config"
	"github.com/taskboard/taskboard-go/internal/repository"
	"github.com/taskboard/taskboard-go/internal/repository/postgres"
	"github.com/taskboard/taskboard-go/internal/service"
)

// stores bundles the persistence layer for the configured driver.
type stores struct {
	users    service.UserStore
	projects service.ProjectStore
	tasks    service.TaskStore
	tx       service.Transactor
	ping     func(ctx context.Context) error
	close    func()
}

func openStores(ctx context.Context, cfg config.DatabaseConfig) (*stores, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := repository.NewDB(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:    repository.NewUserRepository(db),
			projects: repository.NewProjectRepository(db),
			tasks:    repository.NewTaskRepository(db),
			tx:       repository.NewTxManager(db),
			ping:     db.PingContext,
			close:    func() { _ = db.Close() },
		}, nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:    postgres.NewUserRepository(pool),
			projects: postgres.NewProjectRepository(pool),
			tasks:    postgres.NewTaskRepository(pool),
			tx:       postgres.NewTransactor(pool),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil
	}
	return nil, oops.Code("CONFIG_INVALID").Errorf("unsupported database driver %q", cfg.Driver)
}
