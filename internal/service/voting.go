package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/krakosik/demoday/internal/ballot"
	"github.com/krakosik/demoday/internal/client"
	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/model"
	"github.com/krakosik/demoday/internal/repository"
	"github.com/sirupsen/logrus"
)

// Receipt confirms an accepted ballot.
type Receipt struct {
	BallotID  string
	VoterName string
	Timestamp time.Time
}

type VotingService interface {
	Quota() ballot.Quota
	// Start logs a voter in and opens an empty session for them.
	Start(ctx context.Context, name string) (Session, error)
	Get(ctx context.Context, sessionID string) (Session, error)
	Select(ctx context.Context, sessionID, startupID, category string) (Session, error)
	Submit(ctx context.Context, sessionID string) (Receipt, error)
	// SubmitBallot accepts a complete ballot without a session.
	SubmitBallot(ctx context.Context, name string, selections map[string]string) (Receipt, error)
	SweepSessions() int
}

type votingService struct {
	startupRepository repository.StartupRepository
	ballotRepository  repository.BallotRepository
	bus               client.MessageBus
	sessions          *sessionStore
	quota             ballot.Quota
	storeTimeout      time.Duration
	now               func() time.Time
}

func newVotingService(startupRepository repository.StartupRepository, ballotRepository repository.BallotRepository, bus client.MessageBus, config dto.Config) *votingService {
	return &votingService{
		startupRepository: startupRepository,
		ballotRepository:  ballotRepository,
		bus:               bus,
		sessions:          newSessionStore(config.SessionTTL),
		quota: ballot.Quota{
			DemoDay:      config.DemoDayTarget,
			PrivatePitch: config.PrivatePitchTarget,
		},
		storeTimeout: config.StoreTimeout,
		now:          time.Now,
	}
}

func (v *votingService) Quota() ballot.Quota {
	return v.quota
}

func (v *votingService) Start(ctx context.Context, name string) (Session, error) {
	voterName := strings.TrimSpace(name)
	if voterName == "" {
		return Session{}, fmt.Errorf("%w: please enter your name", dto.ErrValidation)
	}

	storeCtx, cancel := withStoreTimeout(ctx, v.storeTimeout)
	defer cancel()

	if err := v.checkNotVoted(storeCtx, voterName); err != nil {
		return Session{}, err
	}
	roster, err := v.startupRepository.List(storeCtx)
	if err != nil {
		return Session{}, err
	}
	selection, err := ballot.New(roster, v.quota)
	if err != nil {
		return Session{}, quotaError(err)
	}

	session := &votingSession{
		id:        uuid.NewString(),
		voterName: voterName,
		selection: selection,
		status:    selection.Status(),
	}
	v.sessions.put(session)
	logrus.Infof("Voting session %s started for %s", session.id, voterName)

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.snapshot(), nil
}

func (v *votingService) Get(_ context.Context, sessionID string) (Session, error) {
	session, err := v.session(sessionID)
	if err != nil {
		return Session{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	return session.snapshot(), nil
}

func (v *votingService) Select(_ context.Context, sessionID, startupID, category string) (Session, error) {
	parsed, err := model.ParseVoteCategory(category)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", dto.ErrValidation, err)
	}
	session, err := v.session(sessionID)
	if err != nil {
		return Session{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.status.Terminal() {
		return Session{}, fmt.Errorf("%w: session %s is closed", dto.ErrNotFound, sessionID)
	}
	if err := session.selection.Select(startupID, parsed); err != nil {
		return Session{}, fmt.Errorf("%w: %w", dto.ErrValidation, err)
	}
	session.status = session.selection.Status()
	return session.snapshot(), nil
}

func (v *votingService) Submit(ctx context.Context, sessionID string) (Receipt, error) {
	session, err := v.session(sessionID)
	if err != nil {
		return Receipt{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.status.Terminal() {
		return Receipt{}, fmt.Errorf("%w: session %s is closed", dto.ErrNotFound, sessionID)
	}
	selections := session.selection.Selections()
	if err := ballot.SubmitError(selections, v.quota); err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", dto.ErrValidation, err)
	}

	receipt, err := v.persist(ctx, session.voterName, selections)
	switch {
	case err == nil:
		session.status = ballot.StatusAccepted
		v.sessions.remove(sessionID)
	case errors.Is(err, dto.ErrDuplicateVoter):
		session.status = ballot.StatusRejectedDuplicate
		v.sessions.remove(sessionID)
	}
	return receipt, err
}

func (v *votingService) SubmitBallot(ctx context.Context, name string, raw map[string]string) (Receipt, error) {
	voterName := strings.TrimSpace(name)
	if voterName == "" {
		return Receipt{}, fmt.Errorf("%w: please enter your name", dto.ErrValidation)
	}
	selections := make(model.Selections, len(raw))
	for startupID, category := range raw {
		parsed, err := model.ParseVoteCategory(category)
		if err != nil {
			return Receipt{}, fmt.Errorf("%w: %v", dto.ErrValidation, err)
		}
		selections[startupID] = parsed
	}

	storeCtx, cancel := withStoreTimeout(ctx, v.storeTimeout)
	roster, err := v.startupRepository.List(storeCtx)
	cancel()
	if err != nil {
		return Receipt{}, err
	}
	selection, err := ballot.Replay(roster, v.quota, selections)
	if err != nil {
		if errors.Is(err, ballot.ErrQuotaExceedsRoster) {
			return Receipt{}, quotaError(err)
		}
		return Receipt{}, fmt.Errorf("%w: %w", dto.ErrValidation, err)
	}
	complete := selection.Selections()
	if err := ballot.SubmitError(complete, v.quota); err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", dto.ErrValidation, err)
	}

	return v.persist(ctx, voterName, complete)
}

// persist re-checks the voter against stored ballots, appends the ballot and
// announces it. The store's unique key is the final word on duplicates.
func (v *votingService) persist(ctx context.Context, voterName string, selections model.Selections) (Receipt, error) {
	storeCtx, cancel := withStoreTimeout(ctx, v.storeTimeout)
	defer cancel()

	if err := v.checkNotVoted(storeCtx, voterName); err != nil {
		return Receipt{}, err
	}

	stored, err := v.ballotRepository.Append(storeCtx, model.Ballot{
		ID:             uuid.NewString(),
		VoterName:      voterName,
		VoterNameLower: ballot.NormalizeVoterName(voterName),
		Selections:     selections,
		Timestamp:      v.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, dto.ErrDuplicateVoter) {
			logrus.Warnf("Rejected second ballot for %s", voterName)
		} else {
			logrus.Errorf("Error storing ballot for %s: %v", voterName, err)
		}
		return Receipt{}, err
	}
	logrus.Infof("Ballot %s accepted for %s", stored.ID, stored.VoterName)

	v.announce(ctx, stored)
	return Receipt{
		BallotID:  stored.ID,
		VoterName: stored.VoterName,
		Timestamp: stored.Timestamp,
	}, nil
}

// announce tells results subscribers a ballot was accepted. A failed publish
// does not undo the vote.
func (v *votingService) announce(ctx context.Context, stored model.Ballot) {
	message, err := json.Marshal(dto.BallotAccepted{
		BallotID:  stored.ID,
		VoterName: stored.VoterName,
		Timestamp: stored.Timestamp,
	})
	if err != nil {
		logrus.Errorf("Error marshaling ballot notification: %v", err)
		return
	}
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := v.bus.Publish(publishCtx, message); err != nil {
		logrus.Errorf("Error publishing ballot notification: %v", err)
	}
}

func (v *votingService) checkNotVoted(ctx context.Context, voterName string) error {
	ballots, err := v.ballotRepository.List(ctx)
	if err != nil {
		return err
	}
	if ballot.IsDuplicateVoter(voterName, ballots) {
		return fmt.Errorf("%w: %s", dto.ErrDuplicateVoter, voterName)
	}
	return nil
}

func (v *votingService) session(id string) (*votingSession, error) {
	session, ok := v.sessions.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", dto.ErrNotFound, id)
	}
	return session, nil
}

func (v *votingService) SweepSessions() int {
	removed := v.sessions.Sweep()
	if removed > 0 {
		logrus.Infof("Evicted %d idle voting sessions", removed)
	}
	return removed
}

func quotaError(err error) error {
	return fmt.Errorf("%w: %v", dto.ErrConfiguration, err)
}

func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
