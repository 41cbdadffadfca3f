package view

import (
	"testing"
	"time"
	_ "time/tzdata"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframeFilter(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Thursday evening in New York, already Friday in UTC.
	now := time.Date(2024, 3, 14, 21, 30, 0, 0, loc)
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, loc) }

	tests := []struct {
		name       string
		tf         Timeframe
		start, end time.Time
	}{
		{name: "Today", tf: TimeframeToday, start: day(3, 14), end: day(3, 15)},
		{name: "ThisWeek", tf: TimeframeThisWeek, start: day(3, 11), end: day(3, 18)},
		{name: "LastWeek", tf: TimeframeLastWeek, start: day(3, 4), end: day(3, 11)},
		{name: "ThisMonth", tf: TimeframeThisMonth, start: day(3, 1), end: day(4, 1)},
		{name: "LastMonth", tf: TimeframeLastMonth, start: day(2, 1), end: day(3, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := timeframeFilter(tt.tf, now.UTC(), loc)
			require.NotNil(t, f.Start)
			require.NotNil(t, f.End)
			assert.True(t, tt.start.Equal(*f.Start), "start %s", f.Start)
			assert.True(t, tt.end.Equal(*f.End), "end %s", f.End)
		})
	}

	t.Run("Sunday", func(t *testing.T) {
		sunday := time.Date(2024, 3, 17, 12, 0, 0, 0, loc)
		f := timeframeFilter(TimeframeThisWeek, sunday, loc)
		assert.True(t, day(3, 11).Equal(*f.Start))
	})

	t.Run("AllTime", func(t *testing.T) {
		f := timeframeFilter(TimeframeAll, now, loc)
		assert.Nil(t, f.Start)
		assert.Nil(t, f.End)
	})
}

func TestTimeframePicker_CustomRangeIsInclusive(t *testing.T) {
	p := NewTimeframePicker(TimeframeCustom, time.UTC)

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, p.IsSelecting())

	p.startInput.SetValue("2024-03-01")
	p.endInput.SetValue("2024-03-03")

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(TimeframeSelectedMsg)
	require.True(t, ok)
	assert.True(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Equal(*msg.Filter.Start))
	assert.True(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC).Equal(*msg.Filter.End))
	assert.Nil(t, p.err)
}

func TestTimeframePicker_RejectsReversedRange(t *testing.T) {
	p := NewTimeframePicker(TimeframeCustom, time.UTC)
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})

	p.startInput.SetValue("2024-03-05")
	p.endInput.SetValue("2024-03-01")

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Error(t, p.err)
}
