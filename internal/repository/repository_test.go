package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/model"
)

func strPtr(s string) *string {
	return &s
}

type storeFactory func(t *testing.T) Repositories

func stores(t *testing.T) map[string]storeFactory {
	t.Helper()
	factories := map[string]storeFactory{
		"memory": func(t *testing.T) Repositories {
			return NewMemoryRepositories()
		},
		"sqlite": func(t *testing.T) Repositories {
			repos, err := OpenSQLite(filepath.Join(t.TempDir(), "demoday.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { _ = repos.Close() })
			return repos
		},
	}
	// TEST_POSTGRES_DSN must point at an empty database.
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		factories["postgres"] = func(t *testing.T) Repositories {
			repos, err := OpenPostgres(dsn)
			if err != nil {
				t.Fatalf("open postgres: %v", err)
			}
			t.Cleanup(func() { _ = repos.Close() })
			return repos
		}
	}
	if os.Getenv("FIRESTORE_EMULATOR_HOST") != "" {
		factories["firestore"] = func(t *testing.T) Repositories {
			client, err := firestore.NewClient(context.Background(), "demoday-test-"+uuid.NewString()[:8])
			if err != nil {
				t.Fatalf("firestore client: %v", err)
			}
			repos := NewFirestoreRepositories(client)
			t.Cleanup(func() { _ = repos.Close() })
			return repos
		}
	}
	return factories
}

func newStartup(name string) model.Startup {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return model.Startup{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
}

func newBallot(voter string, selections model.Selections) model.Ballot {
	return model.Ballot{
		ID:             uuid.NewString(),
		VoterName:      voter,
		VoterNameLower: voter,
		Selections:     selections,
		Timestamp:      time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestStartupRepository(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t).Startup()

			zeta := newStartup("Zeta")
			zeta.Website = strPtr("https://zeta.example")
			alpha := newStartup("Alpha")
			for _, s := range []model.Startup{zeta, alpha} {
				if _, err := repo.Create(ctx, s); err != nil {
					t.Fatalf("create %s: %v", s.Name, err)
				}
			}

			list, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].Name != "Alpha" || list[1].Name != "Zeta" {
				t.Fatalf("expected [Alpha Zeta], got %+v", list)
			}

			got, err := repo.GetByID(ctx, zeta.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Website == nil || *got.Website != "https://zeta.example" {
				t.Errorf("expected website to round-trip, got %v", got.Website)
			}
			if got.DeckURL != nil {
				t.Errorf("expected absent deck, got %q", *got.DeckURL)
			}

			zeta.Name = "Zeta Labs"
			zeta.Website = nil
			zeta.DeckURL = strPtr("https://deck.example/zeta")
			updated, err := repo.Update(ctx, zeta)
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if updated.Name != "Zeta Labs" || updated.Website != nil || updated.DeckURL == nil {
				t.Errorf("unexpected update result: %+v", updated)
			}

			if err := repo.Delete(ctx, alpha.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := repo.GetByID(ctx, alpha.ID); !errors.Is(err, dto.ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
			if err := repo.Delete(ctx, alpha.ID); !errors.Is(err, dto.ErrNotFound) {
				t.Errorf("expected ErrNotFound on second delete, got %v", err)
			}
			if _, err := repo.Update(ctx, newStartup("ghost")); !errors.Is(err, dto.ErrNotFound) {
				t.Errorf("expected ErrNotFound updating unknown startup, got %v", err)
			}
		})
	}
}

func TestBallotRepositoryRejectsDuplicateVoter(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t).Ballot()

			first := newBallot("jane doe", model.Selections{"a": model.VoteCategoryDemoDay})
			if _, err := repo.Append(ctx, first); err != nil {
				t.Fatalf("append: %v", err)
			}
			second := newBallot("jane doe", model.Selections{"b": model.VoteCategoryPrivatePitch})
			if _, err := repo.Append(ctx, second); !errors.Is(err, dto.ErrDuplicateVoter) {
				t.Fatalf("expected ErrDuplicateVoter, got %v", err)
			}

			ballots, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(ballots) != 1 {
				t.Fatalf("expected 1 ballot, got %d", len(ballots))
			}
			if got := ballots[0].Selections["a"]; got != model.VoteCategoryDemoDay {
				t.Errorf("expected selections to round-trip, got %v", ballots[0].Selections)
			}
		})
	}
}

func TestBallotRepositoryConcurrentAppendSameVoter(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t).Ballot()

			const writers = 8
			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				accepted int
			)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := repo.Append(ctx, newBallot("race", model.Selections{"a": model.VoteCategoryDemoDay}))
					if err == nil {
						mu.Lock()
						accepted++
						mu.Unlock()
						return
					}
					if !errors.Is(err, dto.ErrDuplicateVoter) {
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			if accepted != 1 {
				t.Fatalf("expected exactly one accepted ballot, got %d", accepted)
			}
		})
	}
}

func TestAppendRequiresID(t *testing.T) {
	repo := NewMemoryRepositories().Ballot()
	b := newBallot("x", nil)
	b.ID = ""
	if _, err := repo.Append(context.Background(), b); !errors.Is(err, dto.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestMemoryListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepositories().Ballot()
	if _, err := repo.Append(ctx, newBallot("a", model.Selections{"s": model.VoteCategoryDemoDay})); err != nil {
		t.Fatalf("append: %v", err)
	}
	list, _ := repo.List(ctx)
	list[0].Selections["s"] = model.VoteCategoryPrivatePitch

	again, _ := repo.List(ctx)
	if again[0].Selections["s"] != model.VoteCategoryDemoDay {
		t.Fatalf("stored ballot was mutated through List result")
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemoryRepositories().Startup().List(ctx); !errors.Is(err, dto.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}
