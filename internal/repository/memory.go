package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/model"
)

// memoryStore keeps the roster and ballots in process memory. It backs local
// development and tests; nothing survives a restart.
type memoryStore struct {
	mu       sync.RWMutex
	startups map[string]model.Startup
	ballots  []model.Ballot
	voters   map[string]struct{}
}

func NewMemoryRepositories(seed ...model.Startup) Repositories {
	store := &memoryStore{
		startups: make(map[string]model.Startup, len(seed)),
		voters:   make(map[string]struct{}),
	}
	for _, s := range seed {
		store.startups[s.ID] = s
	}
	return &repositories{
		startupRepository: (*memoryStartups)(store),
		ballotRepository:  (*memoryBallots)(store),
	}
}

type memoryStartups memoryStore

func (m *memoryStartups) List(ctx context.Context) ([]model.Startup, error) {
	if err := ctx.Err(); err != nil {
		return nil, persistenceError("list startups", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Startup, 0, len(m.startups))
	for _, s := range m.startups {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryStartups) GetByID(ctx context.Context, id string) (model.Startup, error) {
	if err := ctx.Err(); err != nil {
		return model.Startup{}, persistenceError("get startup", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.startups[id]
	if !ok {
		return model.Startup{}, notFoundError("startup", id)
	}
	return s, nil
}

func (m *memoryStartups) Create(ctx context.Context, startup model.Startup) (model.Startup, error) {
	if err := ctx.Err(); err != nil {
		return model.Startup{}, persistenceError("create startup", err)
	}
	if startup.ID == "" {
		return model.Startup{}, persistenceError("create startup", errEmptyID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.startups[startup.ID]; exists {
		return model.Startup{}, persistenceError("create startup", fmt.Errorf("startup %s already exists", startup.ID))
	}
	m.startups[startup.ID] = startup
	return startup, nil
}

func (m *memoryStartups) Update(ctx context.Context, startup model.Startup) (model.Startup, error) {
	if err := ctx.Err(); err != nil {
		return model.Startup{}, persistenceError("update startup", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.startups[startup.ID]
	if !ok {
		return model.Startup{}, notFoundError("startup", startup.ID)
	}
	existing.Apply(startup.Fields())
	existing.UpdatedAt = startup.UpdatedAt
	m.startups[startup.ID] = existing
	return existing, nil
}

func (m *memoryStartups) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return persistenceError("delete startup", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.startups[id]; !ok {
		return notFoundError("startup", id)
	}
	delete(m.startups, id)
	return nil
}

type memoryBallots memoryStore

func (m *memoryBallots) List(ctx context.Context) ([]model.Ballot, error) {
	if err := ctx.Err(); err != nil {
		return nil, persistenceError("list ballots", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Ballot, 0, len(m.ballots))
	for _, b := range m.ballots {
		b.Selections = b.Selections.Clone()
		out = append(out, b)
	}
	return out, nil
}

func (m *memoryBallots) Append(ctx context.Context, ballot model.Ballot) (model.Ballot, error) {
	if err := ctx.Err(); err != nil {
		return model.Ballot{}, persistenceError("append ballot", err)
	}
	if ballot.ID == "" {
		return model.Ballot{}, persistenceError("append ballot", errEmptyID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.voters[ballot.VoterNameLower]; taken {
		return model.Ballot{}, fmt.Errorf("%w: %s", dto.ErrDuplicateVoter, ballot.VoterName)
	}
	ballot.Selections = ballot.Selections.Clone()
	m.voters[ballot.VoterNameLower] = struct{}{}
	m.ballots = append(m.ballots, ballot)
	return ballot, nil
}
