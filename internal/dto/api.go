package dto

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

type ConfigResponse struct {
	DemoDayTarget      int `json:"demo_day_target"`
	PrivatePitchTarget int `json:"private_pitch_target"`
}

type StartupResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Website         *string   `json:"website"`
	FounderLinkedIn *string   `json:"founder_linkedin"`
	DeckURL         *string   `json:"deck_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateStartupRequest struct {
	Name            string  `json:"name"`
	Website         *string `json:"website"`
	FounderLinkedIn *string `json:"founder_linkedin"`
	DeckURL         *string `json:"deck_url"`
}

// UpdateStartupRequest fields left out of the body keep their stored value.
// A null or empty link clears it.
type UpdateStartupRequest struct {
	Name            *string        `json:"name"`
	Website         OptionalString `json:"website"`
	FounderLinkedIn OptionalString `json:"founder_linkedin"`
	DeckURL         OptionalString `json:"deck_url"`
}

type StartSessionRequest struct {
	Name string `json:"name"`
}

type SelectRequest struct {
	StartupID string `json:"startup_id"`
	Category  string `json:"category"`
}

type SessionResponse struct {
	ID                 string            `json:"id"`
	VoterName          string            `json:"voter_name"`
	Status             string            `json:"status"`
	DemoDayCount       int               `json:"demo_day_count"`
	PrivatePitchCount  int               `json:"private_pitch_count"`
	DemoDayTarget      int               `json:"demo_day_target"`
	PrivatePitchTarget int               `json:"private_pitch_target"`
	Submittable        bool              `json:"submittable"`
	Selections         map[string]string `json:"selections"`
}

type SubmitBallotRequest struct {
	VoterName  string            `json:"voter_name"`
	Selections map[string]string `json:"selections"`
}

type SubmitBallotResponse struct {
	BallotID  string    `json:"ballot_id"`
	VoterName string    `json:"voter_name"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type UnlockRequest struct {
	Action string `json:"action"`
}

type UnlockResponse struct {
	Action  string `json:"action"`
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`
}

type RankingEntry struct {
	Rank        int      `json:"rank"`
	StartupID   string   `json:"startup_id"`
	StartupName string   `json:"startup_name"`
	OnRoster    bool     `json:"on_roster"`
	Count       int      `json:"count"`
	Voters      []string `json:"voters"`
}

type ResultsResponse struct {
	DemoDay      []RankingEntry `json:"demo_day"`
	PrivatePitch []RankingEntry `json:"private_pitch"`
	BallotCount  int            `json:"ballot_count"`
	ComputedAt   time.Time      `json:"computed_at"`
}

// BallotAccepted is published on the message bus after a ballot is stored.
type BallotAccepted struct {
	BallotID  string    `json:"ballot_id"`
	VoterName string    `json:"voter_name"`
	Timestamp time.Time `json:"timestamp"`
}
