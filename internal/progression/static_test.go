package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func benchExercise() ExerciseProgression {
	return ExerciseProgression{
		ExerciseID:      primitive.NewObjectID(),
		PlanExerciseID:  primitive.NewObjectID(),
		BaseWeight:      100,
		BaseReps:        8,
		BaseSets:        3,
		WeightIncrement: 5,
		MinReps:         8,
		MaxReps:         12,
	}
}

func TestCalculateTargetsForWeek_Ladder(t *testing.T) {
	ex := benchExercise()

	tests := []struct {
		week   int
		weight float64
		reps   int
		sets   int
		deload bool
	}{
		{week: 0, weight: 100, reps: 8, sets: 3},
		{week: 1, weight: 100, reps: 9, sets: 3},
		{week: 2, weight: 105, reps: 8, sets: 3},
		{week: 3, weight: 105, reps: 9, sets: 3},
		{week: 4, weight: 110, reps: 8, sets: 3},
		{week: 5, weight: 110, reps: 9, sets: 3},
		{week: 6, weight: 92.5, reps: 8, sets: 2, deload: true},
	}
	for _, tt := range tests {
		got, err := CalculateTargetsForWeek(ex, tt.week, true)
		require.NoError(t, err)
		assert.Equal(t, tt.week, got.WeekIndex)
		assert.InDelta(t, tt.weight, got.TargetWeight, 1e-9, "week %d weight", tt.week)
		assert.Equal(t, tt.reps, got.TargetReps, "week %d reps", tt.week)
		assert.Equal(t, tt.sets, got.TargetSets, "week %d sets", tt.week)
		assert.Equal(t, tt.deload, got.IsDeload, "week %d deload", tt.week)
	}
}

func TestCalculateTargetsForWeek_BaseWeekIgnoresFlag(t *testing.T) {
	ex := benchExercise()

	got, err := CalculateTargetsForWeek(ex, 0, false)
	require.NoError(t, err)
	assert.Equal(t, WeekTargets{TargetWeight: 100, TargetReps: 8, TargetSets: 3}, got)
}

func TestCalculateTargetsForWeek_IncompleteWeekHolds(t *testing.T) {
	ex := benchExercise()

	for week := 1; week <= 5; week++ {
		held, err := CalculateTargetsForWeek(ex, week, false)
		require.NoError(t, err)
		prev, err := CalculateTargetsForWeek(ex, week-1, true)
		require.NoError(t, err)

		assert.Equal(t, prev.TargetWeight, held.TargetWeight, "week %d", week)
		assert.Equal(t, prev.TargetReps, held.TargetReps, "week %d", week)
		assert.Equal(t, prev.TargetSets, held.TargetSets, "week %d", week)
		assert.False(t, held.IsDeload)
	}
}

func TestCalculateTargetsForWeek_DeloadIgnoresFlag(t *testing.T) {
	ex := benchExercise()

	for _, completed := range []bool{true, false} {
		got, err := CalculateTargetsForWeek(ex, DeloadWeekIndex, completed)
		require.NoError(t, err)
		assert.True(t, got.IsDeload)
		assert.InDelta(t, 92.5, got.TargetWeight, 1e-9)
		assert.Equal(t, ex.MinReps, got.TargetReps)
	}
}

func TestCalculateTargetsForWeek_OutOfRange(t *testing.T) {
	ex := benchExercise()

	for _, week := range []int{-1, WeeksPerBlock} {
		_, err := CalculateTargetsForWeek(ex, week, true)
		assert.ErrorIs(t, err, ErrWeekOutOfRange)
	}
}

func TestDeloadCanFallBelowBaseWeight(t *testing.T) {
	ex := ExerciseProgression{
		BaseWeight:      135,
		BaseReps:        5,
		BaseSets:        5,
		WeightIncrement: 5,
		MinReps:         3,
		MaxReps:         8,
	}

	got, err := CalculateTargetsForWeek(ex, DeloadWeekIndex, true)
	require.NoError(t, err)
	assert.InDelta(t, 122.5, got.TargetWeight, 1e-9)
	assert.Less(t, got.TargetWeight, ex.BaseWeight)
	assert.Equal(t, 3, got.TargetSets) // round(2.5) = 3
	assert.Equal(t, 3, got.TargetReps)
}

func TestDeloadSetsNeverBelowOne(t *testing.T) {
	ex := benchExercise()
	ex.BaseSets = 1

	got, err := CalculateTargetsForWeek(ex, DeloadWeekIndex, true)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TargetSets)
}

func TestCalculateProgressionHistory(t *testing.T) {
	ex := benchExercise()

	t.Run("no records means every week completed", func(t *testing.T) {
		ladder := CalculateProgressionHistory(ex, nil)
		require.Len(t, ladder, WeeksPerBlock)
		for week, rung := range ladder {
			want, err := CalculateTargetsForWeek(ex, week, true)
			require.NoError(t, err)
			assert.Equal(t, want, rung)
		}
	})

	t.Run("missed week holds the next rung", func(t *testing.T) {
		// Week number 2 (index 1) was not completed, so index 2 keeps index 1's target.
		history := []CompletionStatus{
			BuildCompletionStatus(ex.ExerciseID, 1, 3, 3),
			BuildCompletionStatus(ex.ExerciseID, 2, 3, 1),
		}
		ladder := CalculateProgressionHistory(ex, history)

		assert.Equal(t, ladder[1].TargetWeight, ladder[2].TargetWeight)
		assert.Equal(t, ladder[1].TargetReps, ladder[2].TargetReps)
		assert.InDelta(t, 100.0, ladder[2].TargetWeight, 1e-9)
		assert.Equal(t, 10, ladder[3].TargetReps)
		assert.InDelta(t, 105.0, ladder[4].TargetWeight, 1e-9)
		assert.InDelta(t, 105.0, ladder[5].TargetWeight, 1e-9)
		// 105 * 0.85 = 89.25 -> 90
		assert.InDelta(t, 90.0, ladder[6].TargetWeight, 1e-9)
		assert.True(t, ladder[6].IsDeload)
	})

	t.Run("records for other exercises are ignored", func(t *testing.T) {
		history := []CompletionStatus{
			BuildCompletionStatus(primitive.NewObjectID(), 1, 3, 0),
		}
		ladder := CalculateProgressionHistory(ex, history)
		assert.Equal(t, 9, ladder[1].TargetReps)
	})
}

func TestWeekMapping(t *testing.T) {
	assert.Equal(t, 0, WeekIndex(1))
	assert.Equal(t, DeloadWeekIndex, WeekIndex(DeloadWeekNumber))
	assert.Equal(t, 7, WeekNumber(6))
	assert.True(t, IsDeloadWeekNumber(7))
	assert.False(t, IsDeloadWeekNumber(6))
}

func TestRoundToStep(t *testing.T) {
	assert.InDelta(t, 122.5, RoundToStep(123.25), 1e-9)
	assert.InDelta(t, 125.0, RoundToStep(123.75), 1e-9)
	assert.InDelta(t, 85.0, RoundToStep(85.0000001), 1e-9)
}
