package model

import "fmt"

type VoteCategory string

const (
	VoteCategoryDemoDay      VoteCategory = "DEMO_DAY"
	VoteCategoryPrivatePitch VoteCategory = "PRIVATE_PITCH"
	VoteCategoryNone         VoteCategory = "NONE"
)

// PositiveCategories lists the categories that count as a vote.
var PositiveCategories = []VoteCategory{VoteCategoryDemoDay, VoteCategoryPrivatePitch}

func ParseVoteCategory(raw string) (VoteCategory, error) {
	switch VoteCategory(raw) {
	case VoteCategoryDemoDay, VoteCategoryPrivatePitch, VoteCategoryNone:
		return VoteCategory(raw), nil
	case "":
		return VoteCategoryNone, nil
	default:
		return "", fmt.Errorf("unknown vote category %q", raw)
	}
}

func (c VoteCategory) IsPositive() bool {
	return c == VoteCategoryDemoDay || c == VoteCategoryPrivatePitch
}

func (c VoteCategory) DisplayName() string {
	switch c {
	case VoteCategoryDemoDay:
		return "Demo Day"
	case VoteCategoryPrivatePitch:
		return "Private Pitch"
	default:
		return "None"
	}
}
