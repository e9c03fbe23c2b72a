package ballot

import (
	"fmt"
	"strings"

	"github.com/krakosik/demoday/internal/model"
)

// Status is a position in the ballot lifecycle. Accepted and
// RejectedDuplicate are terminal.
type Status string

const (
	StatusEmpty             Status = "empty"
	StatusNotSubmittable    Status = "not_submittable"
	StatusSubmittable       Status = "submittable"
	StatusAccepted          Status = "accepted"
	StatusRejectedDuplicate Status = "rejected_duplicate"
)

func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejectedDuplicate
}

// Selection is an in-progress ballot. Select is the only way to change it, so
// the per-category counts never exceed the quota.
type Selection struct {
	quota   Quota
	order   []string
	choices map[string]model.VoteCategory
	counts  map[model.VoteCategory]int
}

// New starts an empty selection covering every startup on the roster.
func New(roster []model.Startup, quota Quota) (*Selection, error) {
	if err := quota.Validate(len(roster)); err != nil {
		return nil, err
	}
	s := &Selection{
		quota:   quota,
		order:   make([]string, 0, len(roster)),
		choices: make(map[string]model.VoteCategory, len(roster)),
		counts:  make(map[model.VoteCategory]int, len(model.PositiveCategories)),
	}
	for _, startup := range roster {
		if _, seen := s.choices[startup.ID]; seen {
			continue
		}
		s.order = append(s.order, startup.ID)
		s.choices[startup.ID] = model.VoteCategoryNone
	}
	return s, nil
}

// Replay builds a selection from a complete selections map by applying every
// positive choice in roster order. Entries for startups outside the roster are
// rejected.
func Replay(roster []model.Startup, quota Quota, selections model.Selections) (*Selection, error) {
	s, err := New(roster, quota)
	if err != nil {
		return nil, err
	}
	for id := range selections {
		if _, ok := s.choices[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStartup, id)
		}
	}
	for _, id := range s.order {
		category, ok := selections[id]
		if !ok || category == model.VoteCategoryNone {
			continue
		}
		if err := s.Select(id, category); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Select assigns category to the startup. Choosing the category the startup
// already holds clears it. A startup holds at most one category; a new choice
// replaces the previous one.
func (s *Selection) Select(startupID string, category model.VoteCategory) error {
	current, ok := s.choices[startupID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStartup, startupID)
	}
	switch category {
	case model.VoteCategoryDemoDay, model.VoteCategoryPrivatePitch, model.VoteCategoryNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	if current == category || category == model.VoteCategoryNone {
		s.assign(startupID, model.VoteCategoryNone)
		return nil
	}
	if target := s.quota.Target(category); s.counts[category] >= target {
		return fmt.Errorf("%w: you can only select %d startups for %s",
			ErrQuotaReached, target, category.DisplayName())
	}
	s.assign(startupID, category)
	return nil
}

func (s *Selection) assign(startupID string, category model.VoteCategory) {
	previous := s.choices[startupID]
	if previous.IsPositive() {
		s.counts[previous]--
	}
	if category.IsPositive() {
		s.counts[category]++
	}
	s.choices[startupID] = category
}

func (s *Selection) Quota() Quota {
	return s.quota
}

func (s *Selection) Count(category model.VoteCategory) int {
	return s.counts[category]
}

func (s *Selection) Category(startupID string) (model.VoteCategory, bool) {
	c, ok := s.choices[startupID]
	return c, ok
}

// Full reports whether no more startups may be added to category.
func (s *Selection) Full(category model.VoteCategory) bool {
	return category.IsPositive() && s.counts[category] >= s.quota.Target(category)
}

// Selections returns a copy of the current choices, including NONE entries.
func (s *Selection) Selections() model.Selections {
	out := make(model.Selections, len(s.choices))
	for id, c := range s.choices {
		out[id] = c
	}
	return out
}

// StartupIDs returns the startups covered by the selection in roster order.
func (s *Selection) StartupIDs() []string {
	return append([]string(nil), s.order...)
}

func (s *Selection) Submittable() bool {
	return IsSubmittable(s.choices, s.quota)
}

func (s *Selection) Status() Status {
	switch {
	case s.Submittable():
		return StatusSubmittable
	case s.counts[model.VoteCategoryDemoDay] == 0 && s.counts[model.VoteCategoryPrivatePitch] == 0:
		return StatusEmpty
	default:
		return StatusNotSubmittable
	}
}

// IsSubmittable reports whether selections assign exactly the quota to each
// category.
func IsSubmittable(selections model.Selections, quota Quota) bool {
	return selections.Count(model.VoteCategoryDemoDay) == quota.DemoDay &&
		selections.Count(model.VoteCategoryPrivatePitch) == quota.PrivatePitch
}

// SubmitError explains why selections cannot be submitted yet.
func SubmitError(selections model.Selections, quota Quota) error {
	if IsSubmittable(selections, quota) {
		return nil
	}
	return fmt.Errorf("%w: please select exactly %d for Demo Day and %d for Private Pitch (currently %d and %d)",
		ErrNotSubmittable,
		quota.DemoDay, quota.PrivatePitch,
		selections.Count(model.VoteCategoryDemoDay), selections.Count(model.VoteCategoryPrivatePitch))
}

// NormalizeVoterName returns the key used to detect repeat voters.
func NormalizeVoterName(name string) string {
	return foldCase(strings.TrimSpace(name))
}

// IsDuplicateVoter reports whether any ballot already belongs to name.
func IsDuplicateVoter(name string, ballots []model.Ballot) bool {
	key := NormalizeVoterName(name)
	for _, b := range ballots {
		stored := b.VoterNameLower
		if stored == "" {
			stored = b.VoterName
		}
		if NormalizeVoterName(stored) == key {
			return true
		}
	}
	return false
}
