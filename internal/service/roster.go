package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/model"
	"github.com/krakosik/demoday/internal/repository"
	"github.com/sirupsen/logrus"
)

type RosterService interface {
	List(ctx context.Context) ([]model.Startup, error)
	Create(ctx context.Context, request dto.CreateStartupRequest) (model.Startup, error)
	Update(ctx context.Context, id string, request dto.UpdateStartupRequest) (model.Startup, error)
	Delete(ctx context.Context, id string) error
}

type rosterService struct {
	startupRepository repository.StartupRepository
	storeTimeout      time.Duration
	now               func() time.Time
}

func newRosterService(startupRepository repository.StartupRepository, config dto.Config) RosterService {
	return &rosterService{
		startupRepository: startupRepository,
		storeTimeout:      config.StoreTimeout,
		now:               time.Now,
	}
}

func (r *rosterService) List(ctx context.Context) ([]model.Startup, error) {
	storeCtx, cancel := withStoreTimeout(ctx, r.storeTimeout)
	defer cancel()

	return r.startupRepository.List(storeCtx)
}

func (r *rosterService) Create(ctx context.Context, request dto.CreateStartupRequest) (model.Startup, error) {
	fields, err := normalizeStartupFields(model.StartupFields{
		Name:            request.Name,
		Website:         request.Website,
		FounderLinkedIn: request.FounderLinkedIn,
		DeckURL:         request.DeckURL,
	})
	if err != nil {
		return model.Startup{}, err
	}

	now := r.now().UTC()
	startup := model.Startup{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	startup.Apply(fields)

	storeCtx, cancel := withStoreTimeout(ctx, r.storeTimeout)
	defer cancel()

	created, err := r.startupRepository.Create(storeCtx, startup)
	if err != nil {
		return model.Startup{}, err
	}
	logrus.Infof("Startup %s (%s) added to the roster", created.Name, created.ID)
	return created, nil
}

func (r *rosterService) Update(ctx context.Context, id string, request dto.UpdateStartupRequest) (model.Startup, error) {
	storeCtx, cancel := withStoreTimeout(ctx, r.storeTimeout)
	defer cancel()

	existing, err := r.startupRepository.GetByID(storeCtx, id)
	if err != nil {
		return model.Startup{}, err
	}

	fields := existing.Fields()
	if request.Name != nil {
		fields.Name = *request.Name
	}
	fields.Website = request.Website.Resolve(fields.Website)
	fields.FounderLinkedIn = request.FounderLinkedIn.Resolve(fields.FounderLinkedIn)
	fields.DeckURL = request.DeckURL.Resolve(fields.DeckURL)

	fields, err = normalizeStartupFields(fields)
	if err != nil {
		return model.Startup{}, err
	}
	existing.Apply(fields)
	existing.UpdatedAt = r.now().UTC()

	updated, err := r.startupRepository.Update(storeCtx, existing)
	if err != nil {
		return model.Startup{}, err
	}
	logrus.Infof("Startup %s updated", updated.ID)
	return updated, nil
}

func (r *rosterService) Delete(ctx context.Context, id string) error {
	storeCtx, cancel := withStoreTimeout(ctx, r.storeTimeout)
	defer cancel()

	if err := r.startupRepository.Delete(storeCtx, id); err != nil {
		return err
	}
	logrus.Infof("Startup %s removed from the roster", id)
	return nil
}

func normalizeStartupFields(fields model.StartupFields) (model.StartupFields, error) {
	fields.Name = strings.TrimSpace(fields.Name)
	if fields.Name == "" {
		return model.StartupFields{}, fmt.Errorf("%w: startup name is required", dto.ErrValidation)
	}
	links := []struct {
		name  string
		value **string
	}{
		{"website", &fields.Website},
		{"founder_linkedin", &fields.FounderLinkedIn},
		{"deck_url", &fields.DeckURL},
	}
	for _, link := range links {
		normalized, err := normalizeLink(link.name, *link.value)
		if err != nil {
			return model.StartupFields{}, err
		}
		*link.value = normalized
	}
	return fields, nil
}

// normalizeLink trims a link and defaults it to https. Blank links are
// treated as absent.
func normalizeLink(field string, raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		value = "https://" + value
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || strings.ContainsAny(parsed.Host, " \t") {
		return nil, fmt.Errorf("%w: malformed URL field %s", dto.ErrValidation, field)
	}
	return &value, nil
}
