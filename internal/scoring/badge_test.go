package scoring

import (
	"testing"
	"time"

	"quiz-attempt-service/internal/domain"
)

func TestFirstMatchAwardsFirstDeclaredBadge(t *testing.T) {
	badges := []domain.Badge{
		{Media: "bronze.png", Condition: "50"},
		{Media: "gold.png", Condition: "80"},
	}

	earned, ok := FirstMatch{}.Award(badges, 90, time.Now())
	if !ok {
		t.Fatalf("expected a badge at 90%%")
	}
	if earned.Condition != "50" {
		t.Fatalf("first-match must stop at the first declared badge, got %q", earned.Condition)
	}
}

func TestFirstMatchNoBadgeBelowAllConditions(t *testing.T) {
	badges := []domain.Badge{{Media: "bronze.png", Condition: "50"}}
	if _, ok := (FirstMatch{}).Award(badges, 40, time.Now()); ok {
		t.Fatalf("expected no badge below every condition")
	}
}

func TestFirstMatchSkipsUnparsableConditions(t *testing.T) {
	badges := []domain.Badge{
		{Media: "broken.png", Condition: "Score above 80%"},
		{Media: "bronze.png", Condition: " 50 "},
	}
	earned, ok := FirstMatch{}.Award(badges, 60, time.Now())
	if !ok || earned.Media != "bronze.png" {
		t.Fatalf("expected unparsable condition to be skipped, got %+v ok=%v", earned, ok)
	}
}

func TestBestMatchAwardsHighestQualifying(t *testing.T) {
	badges := []domain.Badge{
		{Media: "bronze.png", Condition: "50"},
		{Media: "gold.png", Condition: "80"},
		{Media: "platinum.png", Condition: "95"},
	}

	earned, ok := BestMatch{}.Award(badges, 90, time.Now())
	if !ok || earned.Condition != "80" {
		t.Fatalf("expected highest qualifying badge 80, got %+v ok=%v", earned, ok)
	}
}

func TestBestMatchNoQualifyingBadge(t *testing.T) {
	badges := []domain.Badge{{Media: "gold.png", Condition: "80"}}
	if _, ok := (BestMatch{}).Award(badges, 10, time.Now()); ok {
		t.Fatalf("expected no badge")
	}
}
