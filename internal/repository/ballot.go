package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/model"
	"gorm.io/gorm"
)

type ballot struct {
	db *gorm.DB
}

func newBallotRepository(db *gorm.DB) BallotRepository {
	return &ballot{
		db: db,
	}
}

func (b *ballot) List(ctx context.Context) ([]model.Ballot, error) {
	var ballots []model.Ballot
	result := b.db.WithContext(ctx).Find(&ballots)
	if result.Error != nil {
		return nil, persistenceError("list ballots", result.Error)
	}

	return ballots, nil
}

func (b *ballot) Append(ctx context.Context, ballot model.Ballot) (model.Ballot, error) {
	if ballot.ID == "" {
		return model.Ballot{}, persistenceError("append ballot", errEmptyID)
	}
	result := b.db.WithContext(ctx).Create(&ballot)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return model.Ballot{}, fmt.Errorf("%w: %s", dto.ErrDuplicateVoter, ballot.VoterName)
		}
		return model.Ballot{}, persistenceError("append ballot", result.Error)
	}

	return ballot, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
