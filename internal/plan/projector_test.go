package plan

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/errors"
)

var projectStart = domain.NewDate(2026, time.March, 2)

func day(n int) domain.Date {
	return projectStart.AddDays(n)
}

type span struct {
	Start string
	End   string
}

func dates(start, end domain.Date) span {
	return span{Start: start.String(), End: end.String()}
}

func spans(tasks []ScheduledTask) map[string]span {
	out := make(map[string]span, len(tasks))
	for _, t := range tasks {
		out[t.ID] = dates(t.EarliestStart, t.LatestEnd)
	}
	return out
}

func TestProject(t *testing.T) {
	tests := []struct {
		name  string
		tasks []Task
		prefs Preferences
		want  map[string]span
	}{
		{
			name:  "dependent task starts the day after",
			tasks: []Task{task("a", 4), task("b", 8, "a")},
			prefs: DefaultPreferences(),
			want: map[string]span{
				"a": dates(day(0), day(0)),
				"b": dates(day(1), day(2)),
			},
		},
		{
			name:  "zero hours is one day",
			tasks: []Task{task("a", 0)},
			prefs: DefaultPreferences(),
			want:  map[string]span{"a": dates(day(0), day(0))},
		},
		{
			name:  "fractional days round up",
			tasks: []Task{task("a", 5)},
			prefs: DefaultPreferences(),
			want:  map[string]span{"a": dates(day(0), day(1))},
		},
		{
			name:  "custom capacity",
			tasks: []Task{task("a", 16), task("b", 17, "a")},
			prefs: Preferences{WorkPerDayHours: 8},
			want: map[string]span{
				"a": dates(day(0), day(1)),
				"b": dates(day(2), day(4)),
			},
		},
		{
			name: "diamond waits for the slowest branch",
			tasks: []Task{
				task("a", 4),
				task("b", 8, "a"),
				task("c", 20, "a"),
				task("d", 4, "b", "c"),
			},
			prefs: DefaultPreferences(),
			want: map[string]span{
				"a": dates(day(0), day(0)),
				"b": dates(day(1), day(2)),
				"c": dates(day(1), day(5)),
				"d": dates(day(6), day(6)),
			},
		},
		{
			name:  "independent tasks share the start date",
			tasks: []Task{task("a", 12), task("b", 4)},
			prefs: DefaultPreferences(),
			want: map[string]span{
				"a": dates(day(0), day(2)),
				"b": dates(day(0), day(0)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Project(tt.tasks, tt.prefs, projectStart)
			require.NoError(t, err)
			require.Len(t, got, len(tt.tasks))
			if diff := cmp.Diff(tt.want, spans(got)); diff != "" {
				t.Errorf("Project() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProjectInvalidPreferences(t *testing.T) {
	for _, hours := range []float64{0, -4, math.NaN(), math.Inf(1)} {
		_, err := Project([]Task{task("a", 4)}, Preferences{WorkPerDayHours: hours}, projectStart)
		require.Error(t, err, "hours=%v", hours)
		assert.Equal(t, errors.ErrCodePreferenceInvalid, errors.CodeOf(err))
	}
}

func TestProjectRequiresStart(t *testing.T) {
	_, err := Project([]Task{task("a", 4)}, DefaultPreferences(), domain.Date{})
	require.Error(t, err)
}

func TestProjectRejectsUnorderedInput(t *testing.T) {
	got, err := Project([]Task{task("b", 4, "a"), task("a", 4)}, DefaultPreferences(), projectStart)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.IsStructural(err))
	assert.Equal(t, errors.ErrCodeGraphOrderViolated, errors.CodeOf(err))
}

func TestProjectDoesNotAliasInput(t *testing.T) {
	tasks := []Task{task("a", 4), task("b", 4, "a")}

	got, err := Project(tasks, DefaultPreferences(), projectStart)
	require.NoError(t, err)

	got[1].Dependencies[0] = "changed"
	assert.Equal(t, "a", tasks[1].Dependencies[0])
}

func TestProjectIsIdempotent(t *testing.T) {
	ordered, err := Order(randomDAG(rand.New(rand.NewSource(3)), 25))
	require.NoError(t, err)

	first, err := Project(ordered, DefaultPreferences(), projectStart)
	require.NoError(t, err)
	second, err := Project(ordered, DefaultPreferences(), projectStart)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmp.Comparer(func(a, b domain.Date) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("repeated projection differs (-first +second):\n%s", diff)
	}
}

func TestProjectDateLaws(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for run := 0; run < 30; run++ {
		prefs := Preferences{WorkPerDayHours: float64(1 + rng.Intn(10))}
		ordered, err := Order(randomDAG(rng, 1+rng.Intn(25)))
		require.NoError(t, err)

		got, err := Project(ordered, prefs, projectStart)
		require.NoError(t, err)

		byID := make(map[string]ScheduledTask, len(got))
		for _, st := range got {
			byID[st.ID] = st
		}
		for _, st := range got {
			days, err := prefs.DurationDays(st.EstHours)
			require.NoError(t, err)
			assert.Equal(t, days, st.DurationDays(), "run %d task %s", run, st.ID)
			assert.False(t, st.LatestEnd.Before(st.EarliestStart))

			if len(st.Dependencies) == 0 {
				assert.True(t, st.EarliestStart.Equal(projectStart))
				continue
			}
			var latest domain.Date
			for _, dep := range st.Dependencies {
				depTask := byID[dep]
				assert.True(t, st.EarliestStart.After(depTask.LatestEnd),
					"run %d: %s starts before %s ends", run, st.ID, dep)
				latest = domain.MaxDate(latest, depTask.LatestEnd)
			}
			assert.True(t, st.EarliestStart.Equal(latest.AddDays(1)))
		}
	}
}

func TestDurationDays(t *testing.T) {
	prefs := DefaultPreferences()
	tests := []struct {
		hours float64
		want  int
	}{
		{0, 1},
		{0.5, 1},
		{4, 1},
		{4.01, 2},
		{8, 2},
		{20, 5},
		{-3, 1},
	}
	for _, tt := range tests {
		got, err := prefs.DurationDays(tt.hours)
		require.NoError(t, err, "hours=%v", tt.hours)
		assert.Equal(t, tt.want, got, "hours=%v", tt.hours)
	}
}

func TestDurationDaysOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		prefs Preferences
		hours float64
	}{
		{"huge estimate", DefaultPreferences(), 1e20},
		{"past int range", DefaultPreferences(), 4e19},
		{"tiny capacity", Preferences{WorkPerDayHours: 1e-300}, 4},
		{"one day over", Preferences{WorkPerDayHours: 1}, MaxDurationDays + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.prefs.DurationDays(tt.hours)
			assert.Error(t, err)
		})
	}

	days, err := Preferences{WorkPerDayHours: 1}.DurationDays(MaxDurationDays)
	require.NoError(t, err)
	assert.Equal(t, MaxDurationDays, days)
}

func TestProjectRejectsEndPastLastDate(t *testing.T) {
	tests := []struct {
		name  string
		prefs Preferences
		tasks []Task
		start domain.Date
	}{
		{"huge estimate", DefaultPreferences(), []Task{task("a", 1e20)}, projectStart},
		{"tiny capacity", Preferences{WorkPerDayHours: 1e-300}, []Task{task("a", 4)}, projectStart},
		{"wraps without bound", DefaultPreferences(), []Task{task("a", 4e15)}, projectStart},
		{"chain crosses year 9999", DefaultPreferences(),
			[]Task{task("a", 4), task("b", 8, "a")}, domain.LastDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Project(tt.tasks, tt.prefs, tt.start)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, errors.ErrCodeTaskInvalid, errors.CodeOf(err))
		})
	}

	got, err := Project([]Task{task("a", 4)}, DefaultPreferences(), domain.LastDate)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].LatestEnd.Equal(domain.LastDate))
}
