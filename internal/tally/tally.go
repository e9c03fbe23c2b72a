// Package tally aggregates accepted ballots into per-category rankings.
//
// Rankings order startups by vote count, highest first. Equal counts fall
// back to roster order; startups no longer on the roster come after every
// roster startup with the same count, ordered by id. Voter names are returned
// in collation order so the output does not depend on ballot order.
package tally

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/krakosik/demoday/internal/model"
)

type Entry struct {
	Rank        int
	StartupID   string
	StartupName string
	OnRoster    bool
	Count       int
	Voters      []string
}

type Results struct {
	DemoDay      []Entry
	PrivatePitch []Entry
	BallotCount  int
	ComputedAt   time.Time
}

// Ranking returns the ranked entries for a positive category.
func (r Results) Ranking(category model.VoteCategory) []Entry {
	switch category {
	case model.VoteCategoryDemoDay:
		return r.DemoDay
	case model.VoteCategoryPrivatePitch:
		return r.PrivatePitch
	default:
		return nil
	}
}

// Compute is a pure function of its inputs; ComputedAt is left for the
// caller to stamp.
func Compute(ballots []model.Ballot, roster []model.Startup) Results {
	position := make(map[string]int, len(roster))
	names := make(map[string]string, len(roster))
	for i, s := range roster {
		if _, ok := position[s.ID]; !ok {
			position[s.ID] = i
			names[s.ID] = s.Name
		}
	}

	counts := map[model.VoteCategory]map[string]*Entry{
		model.VoteCategoryDemoDay:      {},
		model.VoteCategoryPrivatePitch: {},
	}
	for _, b := range ballots {
		for startupID, category := range b.Selections {
			byStartup, ok := counts[category]
			if !ok {
				continue
			}
			e, ok := byStartup[startupID]
			if !ok {
				_, onRoster := position[startupID]
				e = &Entry{StartupID: startupID, StartupName: names[startupID], OnRoster: onRoster}
				byStartup[startupID] = e
			}
			e.Count++
			e.Voters = append(e.Voters, b.VoterName)
		}
	}

	return Results{
		DemoDay:      rank(counts[model.VoteCategoryDemoDay], position),
		PrivatePitch: rank(counts[model.VoteCategoryPrivatePitch], position),
		BallotCount:  len(ballots),
	}
}

func rank(byStartup map[string]*Entry, position map[string]int) []Entry {
	entries := make([]Entry, 0, len(byStartup))
	for _, e := range byStartup {
		e.Voters = SortVoters(e.Voters)
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.OnRoster != b.OnRoster {
			return a.OnRoster
		}
		if a.OnRoster {
			return position[a.StartupID] < position[b.StartupID]
		}
		return a.StartupID < b.StartupID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// SortVoters returns voter names in case-insensitive collation order. Names
// that collate equally are ordered by their raw bytes.
func SortVoters(voters []string) []string {
	out := append([]string(nil), voters...)
	c := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		if cmp := c.CompareString(out[i], out[j]); cmp != 0 {
			return cmp < 0
		}
		return out[i] < out[j]
	})
	return out
}
