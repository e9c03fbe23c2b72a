package tally

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/krakosik/demoday/internal/model"
)

var testRoster = []model.Startup{
	{ID: "a", Name: "Acme"},
	{ID: "b", Name: "Beta"},
	{ID: "c", Name: "Corvid"},
	{ID: "x", Name: "Xylo"},
	{ID: "y", Name: "Yarrow"},
}

func ballot(voter string, sel model.Selections) model.Ballot {
	return model.Ballot{VoterName: voter, VoterNameLower: voter, Selections: sel}
}

func TestComputeEmpty(t *testing.T) {
	r := Compute(nil, testRoster)
	if len(r.DemoDay) != 0 || len(r.PrivatePitch) != 0 {
		t.Fatalf("expected empty rankings, got %+v", r)
	}
	if r.BallotCount != 0 {
		t.Errorf("expected 0 ballots, got %d", r.BallotCount)
	}
}

func TestComputeSingleBallot(t *testing.T) {
	roster := []model.Startup{{ID: "A", Name: "A"}, {ID: "B", Name: "B"}, {ID: "C", Name: "C"}}
	ballots := []model.Ballot{ballot("Voter", model.Selections{
		"A": model.VoteCategoryDemoDay,
		"B": model.VoteCategoryPrivatePitch,
		"C": model.VoteCategoryNone,
	})}

	r := Compute(ballots, roster)

	wantDemo := []Entry{{Rank: 1, StartupID: "A", StartupName: "A", OnRoster: true, Count: 1, Voters: []string{"Voter"}}}
	wantPrivate := []Entry{{Rank: 1, StartupID: "B", StartupName: "B", OnRoster: true, Count: 1, Voters: []string{"Voter"}}}
	if !reflect.DeepEqual(r.DemoDay, wantDemo) {
		t.Errorf("demo day: expected %+v, got %+v", wantDemo, r.DemoDay)
	}
	if !reflect.DeepEqual(r.PrivatePitch, wantPrivate) {
		t.Errorf("private pitch: expected %+v, got %+v", wantPrivate, r.PrivatePitch)
	}
	if r.BallotCount != 1 {
		t.Errorf("expected 1 ballot, got %d", r.BallotCount)
	}
}

func TestComputeOmitsZeroVotes(t *testing.T) {
	r := Compute([]model.Ballot{ballot("v", model.Selections{"a": "DEMO_DAY", "b": "NONE"})}, testRoster)
	for _, e := range r.DemoDay {
		if e.Count == 0 {
			t.Errorf("zero-vote entry %s present", e.StartupID)
		}
	}
	if len(r.DemoDay) != 1 || len(r.PrivatePitch) != 0 {
		t.Errorf("unexpected rankings %+v", r)
	}
}

func TestComputeTieBreak(t *testing.T) {
	ballots := []model.Ballot{
		ballot("v1", model.Selections{"y": "DEMO_DAY", "x": "DEMO_DAY"}),
		ballot("v2", model.Selections{"x": "DEMO_DAY"}),
		ballot("v3", model.Selections{"y": "PRIVATE_PITCH", "c": "PRIVATE_PITCH"}),
	}

	r := Compute(ballots, testRoster)

	if got := ids(r.DemoDay); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("demo day: expected [x y], got %v", got)
	}
	// c and y tie with one vote each; c comes first on the roster.
	if got := ids(r.PrivatePitch); !reflect.DeepEqual(got, []string{"c", "y"}) {
		t.Errorf("private pitch: expected [c y], got %v", got)
	}
	if r.PrivatePitch[0].Rank != 1 || r.PrivatePitch[1].Rank != 2 {
		t.Errorf("unexpected ranks %+v", r.PrivatePitch)
	}
}

func TestComputeOffRosterStartupsRankAfterRosterTies(t *testing.T) {
	ballots := []model.Ballot{
		ballot("v1", model.Selections{"gone-2": "DEMO_DAY"}),
		ballot("v2", model.Selections{"gone-1": "DEMO_DAY"}),
		ballot("v3", model.Selections{"b": "DEMO_DAY"}),
	}
	r := Compute(ballots, testRoster)

	if got := ids(r.DemoDay); !reflect.DeepEqual(got, []string{"b", "gone-1", "gone-2"}) {
		t.Fatalf("expected [b gone-1 gone-2], got %v", got)
	}
	if r.DemoDay[1].OnRoster || r.DemoDay[1].StartupName != "" {
		t.Errorf("expected off-roster entry without a name, got %+v", r.DemoDay[1])
	}
}

func TestComputeIsOrderIndependent(t *testing.T) {
	categories := []model.VoteCategory{
		model.VoteCategoryDemoDay, model.VoteCategoryPrivatePitch, model.VoteCategoryNone,
	}
	rng := rand.New(rand.NewSource(42))
	var ballots []model.Ballot
	for i := 0; i < 40; i++ {
		sel := model.Selections{}
		for _, s := range testRoster {
			sel[s.ID] = categories[rng.Intn(len(categories))]
		}
		ballots = append(ballots, ballot(string(rune('A'+i%26))+"voter", sel))
	}

	want := Compute(ballots, testRoster)
	for i := 0; i < 20; i++ {
		shuffled := append([]model.Ballot(nil), ballots...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := Compute(shuffled, testRoster); !reflect.DeepEqual(got, want) {
			t.Fatalf("shuffle %d changed results:\nwant %+v\ngot  %+v", i, want, got)
		}
	}
}

func TestComputeDoesNotMutateBallots(t *testing.T) {
	ballots := []model.Ballot{ballot("v", model.Selections{"a": "DEMO_DAY"})}
	first := Compute(ballots, testRoster)
	second := Compute(ballots, testRoster)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("recomputing changed results")
	}
	if ballots[0].Selections["a"] != model.VoteCategoryDemoDay {
		t.Fatal("ballot selections were modified")
	}
}

func TestSortVoters(t *testing.T) {
	got := SortVoters([]string{"bob", "Alice", "alice", "Émile", "Carol"})
	want := []string{"Alice", "alice", "bob", "Carol", "Émile"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.StartupID)
	}
	return out
}
