package progression

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeekTargets is one rung of the predetermined ladder.
type WeekTargets struct {
	TargetWeight float64 `json:"targetWeight"`
	TargetReps   int     `json:"targetReps"`
	TargetSets   int     `json:"targetSets"`
	WeekIndex    int     `json:"weekIndex"`
	IsDeload     bool    `json:"isDeload"`
}

// CompletionStatus records whether every prescribed set of an exercise was
// completed in a given week. WeekNumber is 1-based.
type CompletionStatus struct {
	ExerciseID       primitive.ObjectID `json:"exerciseId"`
	WeekNumber       int                `json:"weekNumber"`
	AllSetsCompleted bool               `json:"allSetsCompleted"`
	CompletedSets    int                `json:"completedSets"`
	PrescribedSets   int                `json:"prescribedSets"`
}

// CalculateTargetsForWeek returns the ladder target for weekIndex when every
// earlier week was completed and previousWeekCompleted describes week
// weekIndex-1. Week 0 and the deload week ignore the flag.
func CalculateTargetsForWeek(ex ExerciseProgression, weekIndex int, previousWeekCompleted bool) (WeekTargets, error) {
	if weekIndex < 0 || weekIndex >= WeeksPerBlock {
		return WeekTargets{}, ErrWeekOutOfRange
	}
	prev := baseTargets(ex)
	for w := 1; w < weekIndex; w++ {
		prev = nextRung(ex, prev, w, true)
	}
	if weekIndex == 0 {
		return prev, nil
	}
	return nextRung(ex, prev, weekIndex, previousWeekCompleted), nil
}

// CalculateProgressionHistory replays the whole ladder against recorded
// completions. history is matched by 1-based WeekNumber; a week without a
// record counts as completed.
func CalculateProgressionHistory(ex ExerciseProgression, history []CompletionStatus) []WeekTargets {
	completed := make(map[int]bool, len(history))
	for _, h := range history {
		if h.ExerciseID != primitive.NilObjectID && ex.ExerciseID != primitive.NilObjectID && h.ExerciseID != ex.ExerciseID {
			continue
		}
		completed[WeekIndex(h.WeekNumber)] = h.AllSetsCompleted
	}
	wasCompleted := func(weekIndex int) bool {
		done, ok := completed[weekIndex]
		return !ok || done
	}

	ladder := make([]WeekTargets, 0, WeeksPerBlock)
	prev := baseTargets(ex)
	ladder = append(ladder, prev)
	for w := 1; w < WeeksPerBlock; w++ {
		prev = nextRung(ex, prev, w, wasCompleted(w-1))
		ladder = append(ladder, prev)
	}
	return ladder
}

func baseTargets(ex ExerciseProgression) WeekTargets {
	return WeekTargets{
		TargetWeight: ex.BaseWeight,
		TargetReps:   ex.BaseReps,
		TargetSets:   ex.BaseSets,
		WeekIndex:    0,
	}
}

// nextRung derives week weekIndex from the resolved previous week.
func nextRung(ex ExerciseProgression, prev WeekTargets, weekIndex int, previousCompleted bool) WeekTargets {
	next := prev
	next.WeekIndex = weekIndex
	next.IsDeload = false

	switch {
	case weekIndex == DeloadWeekIndex:
		// Not floored at the base weight.
		next.TargetWeight = deloadWeight(prev.TargetWeight)
		next.TargetReps = ex.MinReps
		next.TargetSets = deloadSets(ex.BaseSets)
		next.IsDeload = true
	case !previousCompleted:
		// hold
	case weekIndex%2 == 1:
		next.TargetReps = prev.TargetReps + 1
	default:
		next.TargetWeight = prev.TargetWeight + ex.WeightIncrement
		next.TargetReps = ex.BaseReps
	}
	return next
}

// BuildCompletionStatus summarises the sets of one exercise in one week.
// prescribed is the number of sets the week called for.
func BuildCompletionStatus(exerciseID primitive.ObjectID, weekNumber, prescribed, completed int) CompletionStatus {
	return CompletionStatus{
		ExerciseID:       exerciseID,
		WeekNumber:       weekNumber,
		AllSetsCompleted: prescribed > 0 && completed >= prescribed,
		CompletedSets:    completed,
		PrescribedSets:   prescribed,
	}
}
