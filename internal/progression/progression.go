// Package progression holds the pure progressive overload rules: the fixed
// week-by-week ladder used to seed a mesocycle and the performance-adaptive
// rule that picks next week's target from what was actually lifted.
//
// Weeks are 0-indexed here (0 is the base week, 6 the deload). Persisted
// workouts use 1-based week numbers; convert with WeekIndex and WeekNumber.
package progression

import (
	"errors"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// WeeksPerBlock is the length of one training block, deload included.
	WeeksPerBlock = 7
	// DeloadWeekIndex is the 0-based index of the deload week.
	DeloadWeekIndex = WeeksPerBlock - 1
	// DeloadWeekNumber is the 1-based week number of the deload week.
	DeloadWeekNumber = WeeksPerBlock

	// DeloadWeightFactor scales the working weight during a deload.
	DeloadWeightFactor = 0.85
	// DeloadVolumeFactor scales the number of sets during a deload.
	DeloadVolumeFactor = 0.5
	// WeightRoundingStep is the smallest plate jump a weight is rounded to.
	WeightRoundingStep = 2.5
)

// ErrWeekOutOfRange is returned for a week outside the training block.
var ErrWeekOutOfRange = errors.New("week is outside the training block")

// ExerciseProgression is the view of a plan exercise the calculators work on.
type ExerciseProgression struct {
	ExerciseID      primitive.ObjectID `json:"exerciseId"`
	PlanExerciseID  primitive.ObjectID `json:"planExerciseId"`
	BaseWeight      float64            `json:"baseWeight"`
	BaseReps        int                `json:"baseReps"`
	BaseSets        int                `json:"baseSets"`
	WeightIncrement float64            `json:"weightIncrement"`
	MinReps         int                `json:"minReps"`
	MaxReps         int                `json:"maxReps"`
}

// WeekIndex converts a 1-based week number to the 0-based calculator index.
func WeekIndex(weekNumber int) int {
	return weekNumber - 1
}

// WeekNumber converts a 0-based calculator index to the persisted 1-based week number.
func WeekNumber(weekIndex int) int {
	return weekIndex + 1
}

// IsDeloadWeekNumber reports whether a persisted week number is the deload week.
func IsDeloadWeekNumber(weekNumber int) bool {
	return weekNumber == DeloadWeekNumber
}

// RoundToStep rounds weight to the nearest WeightRoundingStep.
func RoundToStep(weight float64) float64 {
	return math.Round(weight/WeightRoundingStep) * WeightRoundingStep
}

func deloadWeight(weight float64) float64 {
	return RoundToStep(weight * DeloadWeightFactor)
}

func deloadSets(baseSets int) int {
	sets := int(math.Round(float64(baseSets) * DeloadVolumeFactor))
	if sets < 1 {
		return 1
	}
	return sets
}
