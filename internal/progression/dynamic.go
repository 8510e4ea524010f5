package progression

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// regressAfterFailures is the failure streak at which the weight backs off.
const regressAfterFailures = 2

// PreviousWeekPerformance summarises the best completed set of an exercise in
// a finished week. WeekNumber is 1-based.
type PreviousWeekPerformance struct {
	ExerciseID          primitive.ObjectID `json:"exerciseId"`
	WeekNumber          int                `json:"weekNumber"`
	TargetWeight        float64            `json:"targetWeight"`
	TargetReps          int                `json:"targetReps"`
	ActualWeight        float64            `json:"actualWeight"`
	ActualReps          int                `json:"actualReps"`
	HitTarget           bool               `json:"hitTarget"`
	ConsecutiveFailures int                `json:"consecutiveFailures"`
}

// SetResult is what was actually lifted in one completed set.
type SetResult struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// PerformanceRecord is the best effort of one earlier week.
type PerformanceRecord struct {
	WeekNumber   int     `json:"weekNumber"`
	ActualWeight float64 `json:"actualWeight"`
	ActualReps   int     `json:"actualReps"`
}

// NextWeekTargets is the adaptive target for the coming week.
type NextWeekTargets struct {
	TargetWeight float64 `json:"targetWeight"`
	TargetReps   int     `json:"targetReps"`
	TargetSets   int     `json:"targetSets"`
	IsDeload     bool    `json:"isDeload"`
	Reason       Reason  `json:"reason"`
}

// CalculateNextWeekTargets picks next week's target from last week's performance.
// A nil previous means the exercise has no history yet.
func CalculateNextWeekTargets(ex ExerciseProgression, previous *PreviousWeekPerformance, isDeloadWeek bool) NextWeekTargets {
	if previous == nil {
		return NextWeekTargets{
			TargetWeight: ex.BaseWeight,
			TargetReps:   ex.BaseReps,
			TargetSets:   ex.BaseSets,
			Reason:       ReasonFirstWeek,
		}
	}

	if isDeloadWeek {
		return NextWeekTargets{
			TargetWeight: deloadWeight(previous.ActualWeight),
			TargetReps:   ex.MinReps,
			TargetSets:   deloadSets(ex.BaseSets),
			IsDeload:     true,
			Reason:       ReasonDeload,
		}
	}

	next := NextWeekTargets{TargetSets: ex.BaseSets}
	reps := previous.ActualReps
	switch {
	case reps >= ex.MaxReps:
		next.TargetWeight = previous.ActualWeight + ex.WeightIncrement
		next.TargetReps = ex.MinReps
		next.Reason = ReasonHitMaxReps
	case reps >= previous.TargetReps:
		next.TargetWeight = previous.ActualWeight
		next.TargetReps = min(reps+1, ex.MaxReps)
		next.Reason = ReasonHitTarget
	case reps >= ex.MinReps:
		next.TargetWeight = previous.TargetWeight
		next.TargetReps = previous.TargetReps
		next.Reason = ReasonHold
	case previous.ConsecutiveFailures >= regressAfterFailures:
		next.TargetWeight = max(ex.BaseWeight, previous.ActualWeight-ex.WeightIncrement)
		next.TargetReps = ex.MinReps
		next.Reason = ReasonRegress
	default:
		next.TargetWeight = previous.TargetWeight
		next.TargetReps = ex.MinReps
		next.Reason = ReasonHold
	}
	return next
}

// CalculateConsecutiveFailures counts the failing weeks at weight at the head
// of history, which is ordered most recent first.
func CalculateConsecutiveFailures(history []PerformanceRecord, weight float64, minReps int) int {
	failures := 0
	for _, h := range history {
		if h.ActualWeight != weight || h.ActualReps >= minReps {
			break
		}
		failures++
	}
	return failures
}

// BuildPreviousWeekPerformance condenses a week's completed sets into a
// PreviousWeekPerformance. It returns nil when nothing was completed.
func BuildPreviousWeekPerformance(
	exerciseID primitive.ObjectID,
	weekNumber int,
	targetWeight float64,
	targetReps int,
	completedSets []SetResult,
	minReps int,
	history []PerformanceRecord,
) *PreviousWeekPerformance {
	if len(completedSets) == 0 {
		return nil
	}
	best := BestSet(completedSets)

	failures := 0
	if best.Reps < minReps {
		failures = CalculateConsecutiveFailures(history, targetWeight, minReps) + 1
	}

	return &PreviousWeekPerformance{
		ExerciseID:          exerciseID,
		WeekNumber:          weekNumber,
		TargetWeight:        targetWeight,
		TargetReps:          targetReps,
		ActualWeight:        best.Weight,
		ActualReps:          best.Reps,
		HitTarget:           best.Reps >= targetReps,
		ConsecutiveFailures: failures,
	}
}

// BestSet returns the heaviest set, preferring more reps at equal weight.
// sets must not be empty.
func BestSet(sets []SetResult) SetResult {
	best := sets[0]
	for _, s := range sets[1:] {
		if s.Weight > best.Weight || (s.Weight == best.Weight && s.Reps > best.Reps) {
			best = s
		}
	}
	return best
}
