package scoring

import (
	"strconv"
	"strings"
	"time"

	"quiz-attempt-service/internal/domain"
)

// BadgePolicy selects at most one badge for a finished attempt.
type BadgePolicy interface {
	// Award returns the badge earned for the given percentage score, or
	// false when no badge condition is met.
	Award(badges []domain.Badge, percentage float64, now time.Time) (domain.EarnedBadge, bool)
}

// FirstMatch awards the first badge, in declaration order, whose condition is
// met. This mirrors the historical behavior and is the wired default even
// though a ladder declared ascending means a 90% score earns the lowest
// qualifying badge rather than the highest; see BestMatch for the likely
// intended policy.
type FirstMatch struct{}

func (FirstMatch) Award(badges []domain.Badge, percentage float64, now time.Time) (domain.EarnedBadge, bool) {
	for _, badge := range badges {
		if threshold, ok := ParseCondition(badge.Condition); ok && percentage >= threshold {
			return domain.EarnedBadge{
				Media:     badge.Media,
				Condition: badge.Condition,
				AwardedAt: now,
			}, true
		}
	}
	return domain.EarnedBadge{}, false
}

// BestMatch awards the qualifying badge with the highest condition.
type BestMatch struct{}

func (BestMatch) Award(badges []domain.Badge, percentage float64, now time.Time) (domain.EarnedBadge, bool) {
	best := domain.EarnedBadge{}
	bestThreshold := -1.0
	for _, badge := range badges {
		threshold, ok := ParseCondition(badge.Condition)
		if !ok || percentage < threshold || threshold <= bestThreshold {
			continue
		}
		bestThreshold = threshold
		best = domain.EarnedBadge{
			Media:     badge.Media,
			Condition: badge.Condition,
			AwardedAt: now,
		}
	}
	return best, bestThreshold >= 0
}

// ParseCondition reads a numeric threshold out of a badge's stored string
// condition. Unparsable conditions never match.
func ParseCondition(raw string) (float64, bool) {
	threshold, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return threshold, true
}
