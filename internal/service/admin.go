package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/krakosik/demoday/internal/dto"
)

type Action string

const (
	ActionViewResults Action = "view_results"
	ActionEditRoster  Action = "edit_roster"
)

func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionViewResults, ActionEditRoster:
		return Action(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown admin action %q", dto.ErrValidation, raw)
	}
}

// Decision is the outcome of an admin check. Reason is set when access is
// denied.
type Decision struct {
	Granted bool
	Reason  string
}

// AdminGate decides whether a caller holding secret may perform action.
// There is no session: every admin request presents the secret again.
type AdminGate interface {
	Authorize(secret string, action Action) Decision
}

type adminGate struct {
	digest [sha256.Size]byte
}

func newAdminGate(config dto.Config) AdminGate {
	return &adminGate{digest: sha256.Sum256([]byte(config.AdminPassword))}
}

func (a *adminGate) Authorize(secret string, action Action) Decision {
	switch action {
	case ActionViewResults, ActionEditRoster:
	default:
		return Decision{Reason: "unknown action"}
	}
	if secret == "" {
		return Decision{Reason: "admin secret required"}
	}
	// Digests keep the comparison constant time regardless of length.
	given := sha256.Sum256([]byte(secret))
	if subtle.ConstantTimeCompare(given[:], a.digest[:]) != 1 {
		return Decision{Reason: "incorrect admin secret"}
	}
	return Decision{Granted: true}
}
