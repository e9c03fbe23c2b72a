package ballot

import (
	"fmt"

	"github.com/krakosik/demoday/internal/model"
)

// Quota is the exact number of startups a ballot must assign to each category.
type Quota struct {
	DemoDay      int
	PrivatePitch int
}

func (q Quota) Target(category model.VoteCategory) int {
	switch category {
	case model.VoteCategoryDemoDay:
		return q.DemoDay
	case model.VoteCategoryPrivatePitch:
		return q.PrivatePitch
	default:
		return 0
	}
}

// Validate checks that a roster of rosterSize startups can hold the quota
// without counting any startup twice.
func (q Quota) Validate(rosterSize int) error {
	if q.DemoDay < 0 || q.PrivatePitch < 0 {
		return fmt.Errorf("%w: category targets must not be negative", ErrQuotaExceedsRoster)
	}
	if q.DemoDay+q.PrivatePitch > rosterSize {
		return fmt.Errorf("%w: a ballot needs %d startups but the roster has %d",
			ErrQuotaExceedsRoster, q.DemoDay+q.PrivatePitch, rosterSize)
	}
	return nil
}
