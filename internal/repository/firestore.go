package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	startupsCollection = "startups"
	ballotsCollection  = "ballots"
)

type startupDoc struct {
	Name            string    `firestore:"name"`
	Website         *string   `firestore:"website"`
	FounderLinkedIn *string   `firestore:"founder_linkedin"`
	DeckURL         *string   `firestore:"deck_url"`
	CreatedAt       time.Time `firestore:"created_at"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}

type ballotDoc struct {
	ID             string            `firestore:"id"`
	VoterName      string            `firestore:"voter_name"`
	VoterNameLower string            `firestore:"voter_name_lower"`
	Selections     map[string]string `firestore:"selections"`
	Timestamp      time.Time         `firestore:"timestamp"`
}

// NewFirestoreRepositories stores the roster and ballots in Firestore.
// Ballot documents are keyed by a digest of the normalized voter name so a
// second ballot for the same voter fails the create.
func NewFirestoreRepositories(client *firestore.Client) Repositories {
	return &repositories{
		startupRepository: &firestoreStartups{client: client},
		ballotRepository:  &firestoreBallots{client: client},
		closer:            client.Close,
	}
}

type firestoreStartups struct {
	client *firestore.Client
}

func (f *firestoreStartups) List(ctx context.Context) ([]model.Startup, error) {
	iter := f.client.Collection(startupsCollection).
		OrderBy("name", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	startups := make([]model.Startup, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, persistenceError("list startups", err)
		}
		startup, err := startupFromSnapshot(snap)
		if err != nil {
			return nil, persistenceError("list startups", err)
		}
		startups = append(startups, startup)
	}
	return startups, nil
}

func (f *firestoreStartups) GetByID(ctx context.Context, id string) (model.Startup, error) {
	if id == "" {
		return model.Startup{}, notFoundError("startup", id)
	}
	snap, err := f.client.Collection(startupsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.Startup{}, notFoundError("startup", id)
		}
		return model.Startup{}, persistenceError("get startup", err)
	}
	startup, err := startupFromSnapshot(snap)
	if err != nil {
		return model.Startup{}, persistenceError("get startup", err)
	}
	return startup, nil
}

func (f *firestoreStartups) Create(ctx context.Context, startup model.Startup) (model.Startup, error) {
	if startup.ID == "" {
		return model.Startup{}, persistenceError("create startup", errEmptyID)
	}
	doc := startupDoc{
		Name:            startup.Name,
		Website:         startup.Website,
		FounderLinkedIn: startup.FounderLinkedIn,
		DeckURL:         startup.DeckURL,
		CreatedAt:       startup.CreatedAt,
		UpdatedAt:       startup.UpdatedAt,
	}
	if _, err := f.client.Collection(startupsCollection).Doc(startup.ID).Create(ctx, doc); err != nil {
		return model.Startup{}, persistenceError("create startup", err)
	}
	return startup, nil
}

func (f *firestoreStartups) Update(ctx context.Context, startup model.Startup) (model.Startup, error) {
	if startup.ID == "" {
		return model.Startup{}, notFoundError("startup", startup.ID)
	}
	_, err := f.client.Collection(startupsCollection).Doc(startup.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: startup.Name},
		{Path: "website", Value: startup.Website},
		{Path: "founder_linkedin", Value: startup.FounderLinkedIn},
		{Path: "deck_url", Value: startup.DeckURL},
		{Path: "updated_at", Value: startup.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.Startup{}, notFoundError("startup", startup.ID)
		}
		return model.Startup{}, persistenceError("update startup", err)
	}
	return f.GetByID(ctx, startup.ID)
}

func (f *firestoreStartups) Delete(ctx context.Context, id string) error {
	if id == "" {
		return notFoundError("startup", id)
	}
	_, err := f.client.Collection(startupsCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return notFoundError("startup", id)
		}
		return persistenceError("delete startup", err)
	}
	return nil
}

func startupFromSnapshot(snap *firestore.DocumentSnapshot) (model.Startup, error) {
	var doc startupDoc
	if err := snap.DataTo(&doc); err != nil {
		return model.Startup{}, err
	}
	return model.Startup{
		ID:              snap.Ref.ID,
		Name:            doc.Name,
		Website:         doc.Website,
		FounderLinkedIn: doc.FounderLinkedIn,
		DeckURL:         doc.DeckURL,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}, nil
}

type firestoreBallots struct {
	client *firestore.Client
}

func (f *firestoreBallots) List(ctx context.Context) ([]model.Ballot, error) {
	iter := f.client.Collection(ballotsCollection).Documents(ctx)
	defer iter.Stop()

	ballots := make([]model.Ballot, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, persistenceError("list ballots", err)
		}
		var doc ballotDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, persistenceError("decode ballot", err)
		}
		selections := make(model.Selections, len(doc.Selections))
		for id, cat := range doc.Selections {
			selections[id] = model.VoteCategory(cat)
		}
		ballots = append(ballots, model.Ballot{
			ID:             doc.ID,
			VoterName:      doc.VoterName,
			VoterNameLower: doc.VoterNameLower,
			Selections:     selections,
			Timestamp:      doc.Timestamp,
		})
	}
	return ballots, nil
}

func (f *firestoreBallots) Append(ctx context.Context, ballot model.Ballot) (model.Ballot, error) {
	if ballot.ID == "" {
		return model.Ballot{}, persistenceError("append ballot", errEmptyID)
	}
	selections := make(map[string]string, len(ballot.Selections))
	for id, cat := range ballot.Selections {
		selections[id] = string(cat)
	}
	doc := ballotDoc{
		ID:             ballot.ID,
		VoterName:      ballot.VoterName,
		VoterNameLower: ballot.VoterNameLower,
		Selections:     selections,
		Timestamp:      ballot.Timestamp,
	}
	_, err := f.client.Collection(ballotsCollection).Doc(voterDocID(ballot.VoterNameLower)).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return model.Ballot{}, fmt.Errorf("%w: %s", dto.ErrDuplicateVoter, ballot.VoterName)
		}
		return model.Ballot{}, persistenceError("append ballot", err)
	}
	return ballot, nil
}

// voterDocID maps a normalized voter name to a valid document id.
func voterDocID(voterNameLower string) string {
	sum := sha256.Sum256([]byte(voterNameLower))
	return hex.EncodeToString(sum[:])
}
