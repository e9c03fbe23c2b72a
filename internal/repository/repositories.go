package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type StartupRepository interface {
	// List returns the roster ordered by name.
	List(ctx context.Context) ([]model.Startup, error)
	GetByID(ctx context.Context, id string) (model.Startup, error)
	Create(ctx context.Context, startup model.Startup) (model.Startup, error)
	Update(ctx context.Context, startup model.Startup) (model.Startup, error)
	Delete(ctx context.Context, id string) error
}

// BallotRepository is append-only. Append fails with dto.ErrDuplicateVoter
// when a ballot with the same VoterNameLower already exists.
type BallotRepository interface {
	List(ctx context.Context) ([]model.Ballot, error)
	Append(ctx context.Context, ballot model.Ballot) (model.Ballot, error)
}

type Repositories interface {
	Startup() StartupRepository
	Ballot() BallotRepository
	Close() error
}

type repositories struct {
	startupRepository StartupRepository
	ballotRepository  BallotRepository
	closer            func() error
}

// OpenPostgres connects to PostgreSQL and migrates the schema.
func OpenPostgres(dsn string) (Repositories, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", dto.ErrPersistence, err)
	}
	return NewRepositories(db)
}

func NewRepositories(db *gorm.DB) (Repositories, error) {
	if err := db.AutoMigrate(&model.Startup{}, &model.Ballot{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", dto.ErrPersistence, err)
	}
	return &repositories{
		startupRepository: newStartupRepository(db),
		ballotRepository:  newBallotRepository(db),
		closer: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}

func (r repositories) Startup() StartupRepository {
	return r.startupRepository
}

func (r repositories) Ballot() BallotRepository {
	return r.ballotRepository
}

func (r repositories) Close() error {
	if r.closer == nil {
		return nil
	}
	if err := r.closer(); err != nil {
		logrus.Errorf("Error closing store: %v", err)
		return err
	}
	return nil
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", dto.ErrPersistence, op, err)
}

func notFoundError(kind, id string) error {
	return fmt.Errorf("%w: %s %s", dto.ErrNotFound, kind, id)
}

var errEmptyID = errors.New("id is required")
