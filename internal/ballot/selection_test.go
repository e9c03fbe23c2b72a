package ballot

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/krakosik/demoday/internal/model"
)

func roster(ids ...string) []model.Startup {
	out := make([]model.Startup, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Startup{ID: id, Name: id})
	}
	return out
}

func TestNewRejectsQuotaLargerThanRoster(t *testing.T) {
	_, err := New(roster("a", "b"), Quota{DemoDay: 2, PrivatePitch: 1})
	if !errors.Is(err, ErrQuotaExceedsRoster) {
		t.Fatalf("expected ErrQuotaExceedsRoster, got %v", err)
	}
}

func TestNewStartsEmpty(t *testing.T) {
	s, err := New(roster("a", "b", "c"), Quota{DemoDay: 1, PrivatePitch: 1})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Status() != StatusEmpty {
		t.Errorf("expected empty status, got %s", s.Status())
	}
	for id, c := range s.Selections() {
		if c != model.VoteCategoryNone {
			t.Errorf("startup %s: expected NONE, got %s", id, c)
		}
	}
	if got := len(s.Selections()); got != 3 {
		t.Errorf("expected 3 entries, got %d", got)
	}
}

func TestSelect(t *testing.T) {
	quota := Quota{DemoDay: 1, PrivatePitch: 2}

	tests := []struct {
		name    string
		steps   [][2]string
		wantErr error
		want    map[string]model.VoteCategory
	}{
		{
			name:  "assigns category",
			steps: [][2]string{{"a", "DEMO_DAY"}},
			want:  map[string]model.VoteCategory{"a": model.VoteCategoryDemoDay},
		},
		{
			name:  "same category toggles off",
			steps: [][2]string{{"a", "DEMO_DAY"}, {"a", "DEMO_DAY"}},
			want:  map[string]model.VoteCategory{"a": model.VoteCategoryNone},
		},
		{
			name:    "rejects when demo day is full",
			steps:   [][2]string{{"a", "DEMO_DAY"}, {"b", "DEMO_DAY"}},
			wantErr: ErrQuotaReached,
			want:    map[string]model.VoteCategory{"a": model.VoteCategoryDemoDay, "b": model.VoteCategoryNone},
		},
		{
			name:  "toggle off allowed when full",
			steps: [][2]string{{"a", "DEMO_DAY"}, {"a", "DEMO_DAY"}, {"b", "DEMO_DAY"}},
			want:  map[string]model.VoteCategory{"a": model.VoteCategoryNone, "b": model.VoteCategoryDemoDay},
		},
		{
			name:    "rejects when private pitch is full",
			steps:   [][2]string{{"a", "PRIVATE_PITCH"}, {"b", "PRIVATE_PITCH"}, {"c", "PRIVATE_PITCH"}},
			wantErr: ErrQuotaReached,
			want:    map[string]model.VoteCategory{"c": model.VoteCategoryNone},
		},
		{
			name:  "overwrite frees previous category",
			steps: [][2]string{{"a", "DEMO_DAY"}, {"a", "PRIVATE_PITCH"}, {"b", "DEMO_DAY"}},
			want: map[string]model.VoteCategory{
				"a": model.VoteCategoryPrivatePitch,
				"b": model.VoteCategoryDemoDay,
			},
		},
		{
			name:  "none clears",
			steps: [][2]string{{"a", "PRIVATE_PITCH"}, {"a", "NONE"}},
			want:  map[string]model.VoteCategory{"a": model.VoteCategoryNone},
		},
		{
			name:    "unknown startup",
			steps:   [][2]string{{"zzz", "DEMO_DAY"}},
			wantErr: ErrUnknownStartup,
		},
		{
			name:    "unknown category",
			steps:   [][2]string{{"a", "BEST_IN_SHOW"}},
			wantErr: ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(roster("a", "b", "c", "d"), quota)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			var lastErr error
			for _, step := range tt.steps {
				lastErr = s.Select(step[0], model.VoteCategory(step[1]))
			}
			if tt.wantErr == nil && lastErr != nil {
				t.Fatalf("unexpected error: %v", lastErr)
			}
			if tt.wantErr != nil && !errors.Is(lastErr, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, lastErr)
			}
			for id, want := range tt.want {
				if got, _ := s.Category(id); got != want {
					t.Errorf("startup %s: expected %s, got %s", id, want, got)
				}
			}
		})
	}
}

func TestSelectQuotaMessageIsReadable(t *testing.T) {
	s, _ := New(roster("a", "b"), Quota{DemoDay: 1})
	_ = s.Select("a", model.VoteCategoryDemoDay)
	err := s.Select("b", model.VoteCategoryDemoDay)
	want := "category is full: you can only select 1 startups for Demo Day"
	if err == nil || err.Error() != want {
		t.Fatalf("expected %q, got %v", want, err)
	}
}

func TestSelectNeverExceedsQuota(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	categories := []model.VoteCategory{
		model.VoteCategoryDemoDay, model.VoteCategoryPrivatePitch, model.VoteCategoryNone,
	}
	quota := Quota{DemoDay: 2, PrivatePitch: 3}
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		s, err := New(roster(ids...), quota)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		for step := 0; step < 200; step++ {
			_ = s.Select(ids[rng.Intn(len(ids))], categories[rng.Intn(len(categories))])

			sel := s.Selections()
			demo := sel.Count(model.VoteCategoryDemoDay)
			private := sel.Count(model.VoteCategoryPrivatePitch)
			if demo > quota.DemoDay || private > quota.PrivatePitch {
				t.Fatalf("run %d step %d: counts %d/%d exceed quota", run, step, demo, private)
			}
			if demo != s.Count(model.VoteCategoryDemoDay) || private != s.Count(model.VoteCategoryPrivatePitch) {
				t.Fatalf("run %d step %d: cached counts drifted", run, step)
			}
		}
	}
}

func TestToggleTwiceReturnsToNone(t *testing.T) {
	for _, category := range model.PositiveCategories {
		s, _ := New(roster("a"), Quota{DemoDay: 1})
		if category == model.VoteCategoryPrivatePitch {
			s, _ = New(roster("a"), Quota{PrivatePitch: 1})
		}
		if err := s.Select("a", category); err != nil {
			t.Fatalf("%s: first select: %v", category, err)
		}
		if err := s.Select("a", category); err != nil {
			t.Fatalf("%s: second select: %v", category, err)
		}
		if got, _ := s.Category("a"); got != model.VoteCategoryNone {
			t.Errorf("%s: expected NONE, got %s", category, got)
		}
	}
}

func TestIsSubmittable(t *testing.T) {
	quota := Quota{DemoDay: 2, PrivatePitch: 1}
	tests := []struct {
		name string
		sel  model.Selections
		want bool
	}{
		{"exact", model.Selections{"a": "DEMO_DAY", "b": "DEMO_DAY", "c": "PRIVATE_PITCH", "d": "NONE"}, true},
		{"demo under", model.Selections{"a": "DEMO_DAY", "c": "PRIVATE_PITCH"}, false},
		{"private under", model.Selections{"a": "DEMO_DAY", "b": "DEMO_DAY"}, false},
		{"demo over", model.Selections{"a": "DEMO_DAY", "b": "DEMO_DAY", "d": "DEMO_DAY", "c": "PRIVATE_PITCH"}, false},
		{"private over", model.Selections{"a": "DEMO_DAY", "b": "DEMO_DAY", "c": "PRIVATE_PITCH", "d": "PRIVATE_PITCH"}, false},
		{"empty", model.Selections{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSubmittable(tt.sel, quota); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if err := SubmitError(tt.sel, quota); (err == nil) != tt.want {
				t.Errorf("SubmitError mismatch: %v", err)
			}
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	s, _ := New(roster("a", "b", "c"), Quota{DemoDay: 1, PrivatePitch: 1})
	if s.Status() != StatusEmpty {
		t.Fatalf("expected empty, got %s", s.Status())
	}
	_ = s.Select("a", model.VoteCategoryDemoDay)
	if s.Status() != StatusNotSubmittable {
		t.Fatalf("expected not submittable, got %s", s.Status())
	}
	_ = s.Select("b", model.VoteCategoryPrivatePitch)
	if s.Status() != StatusSubmittable {
		t.Fatalf("expected submittable, got %s", s.Status())
	}
	if !s.Full(model.VoteCategoryDemoDay) || !s.Full(model.VoteCategoryPrivatePitch) {
		t.Error("expected both categories full")
	}
}

func TestReplay(t *testing.T) {
	r := roster("a", "b", "c")
	quota := Quota{DemoDay: 1, PrivatePitch: 1}

	s, err := Replay(r, quota, model.Selections{"a": "DEMO_DAY", "b": "PRIVATE_PITCH"})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	want := model.Selections{"a": "DEMO_DAY", "b": "PRIVATE_PITCH", "c": "NONE"}
	got := s.Selections()
	for id, c := range want {
		if got[id] != c {
			t.Errorf("startup %s: expected %s, got %s", id, c, got[id])
		}
	}

	if _, err := Replay(r, quota, model.Selections{"a": "DEMO_DAY", "b": "DEMO_DAY"}); !errors.Is(err, ErrQuotaReached) {
		t.Errorf("expected ErrQuotaReached, got %v", err)
	}
	if _, err := Replay(r, quota, model.Selections{"x": "DEMO_DAY"}); !errors.Is(err, ErrUnknownStartup) {
		t.Errorf("expected ErrUnknownStartup, got %v", err)
	}
}

func TestIsDuplicateVoter(t *testing.T) {
	existing := []model.Ballot{{VoterName: "Jane Doe", VoterNameLower: "jane doe"}}

	tests := []struct {
		name string
		want bool
	}{
		{"Jane Doe", true},
		{"  jane doe ", true},
		{"JANE DOE", true},
		{"Jane Doey", false},
		{"John", false},
	}
	for _, tt := range tests {
		if got := IsDuplicateVoter(tt.name, existing); got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.name, tt.want, got)
		}
	}
	if IsDuplicateVoter("Jane Doe", nil) {
		t.Error("no ballots should never be a duplicate")
	}
}

func TestNormalizeVoterName(t *testing.T) {
	if got := NormalizeVoterName("  ÉCOLE Nord "); got != "école nord" {
		t.Errorf("expected case-folded key, got %q", got)
	}
}
