package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/krakosik/demoday/internal/client"
	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/repository"
	"github.com/krakosik/demoday/internal/tally"
	"github.com/sirupsen/logrus"
)

type ResultsService interface {
	Results(ctx context.Context) (tally.Results, error)
	// Stream sends the current results, then a fresh tally after every
	// accepted ballot, until ctx is done. The channel is closed on return.
	Stream(ctx context.Context) (<-chan tally.Results, error)
}

type resultsService struct {
	startupRepository repository.StartupRepository
	ballotRepository  repository.BallotRepository
	bus               client.MessageBus
	storeTimeout      time.Duration
	now               func() time.Time
}

func newResultsService(startupRepository repository.StartupRepository, ballotRepository repository.BallotRepository, bus client.MessageBus, config dto.Config) ResultsService {
	return &resultsService{
		startupRepository: startupRepository,
		ballotRepository:  ballotRepository,
		bus:               bus,
		storeTimeout:      config.StoreTimeout,
		now:               time.Now,
	}
}

func (r *resultsService) Results(ctx context.Context) (tally.Results, error) {
	storeCtx, cancel := withStoreTimeout(ctx, r.storeTimeout)
	defer cancel()

	ballots, err := r.ballotRepository.List(storeCtx)
	if err != nil {
		return tally.Results{}, err
	}
	roster, err := r.startupRepository.List(storeCtx)
	if err != nil {
		return tally.Results{}, err
	}
	results := tally.Compute(ballots, roster)
	results.ComputedAt = r.now().UTC()
	return results, nil
}

func (r *resultsService) Stream(ctx context.Context) (<-chan tally.Results, error) {
	subscriberID := "results_" + uuid.NewString()
	messages, err := r.bus.Subscribe(subscriberID)
	if err != nil {
		return nil, err
	}

	initial, err := r.Results(ctx)
	if err != nil {
		_ = r.bus.Unsubscribe(subscriberID)
		return nil, err
	}

	out := make(chan tally.Results, 1)
	out <- initial

	go func() {
		defer close(out)
		defer func() {
			if err := r.bus.Unsubscribe(subscriberID); err != nil {
				logrus.Errorf("Error unsubscribing %s: %v", subscriberID, err)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case message, ok := <-messages:
				if !ok {
					return
				}
				var accepted dto.BallotAccepted
				if err := json.Unmarshal(message, &accepted); err != nil {
					logrus.Errorf("Error unmarshaling ballot notification: %v", err)
					continue
				}
				results, err := r.Results(ctx)
				if err != nil {
					logrus.Errorf("Error recomputing results after ballot %s: %v", accepted.BallotID, err)
					continue
				}
				select {
				case out <- results:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
