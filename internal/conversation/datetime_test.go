package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhenParserTomorrowAfternoon(t *testing.T) {
	parser := NewWhenParser()
	ref := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

	at, found, err := parser.Parse("book me for tomorrow 3pm", ref)

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 20, at.Day())
	assert.Equal(t, 15, at.Hour())
}

func TestWhenParserHonorsReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	parser := NewWhenParser()
	ref := time.Date(2026, time.October, 19, 9, 0, 0, 0, loc)

	at, found, err := parser.Parse("tomorrow 3pm", ref)

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 10, at.UTC().Hour(), "3pm at UTC+5 is 10:00 UTC")
}

func TestWhenParserDateWithoutClockIsNotATime(t *testing.T) {
	parser := NewWhenParser()
	ref := time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

	for _, text := range []string{"Jane Doe, 9876543210, tomorrow", "tomorrow please"} {
		_, found, err := parser.Parse(text, ref)
		require.NoError(t, err)
		assert.False(t, found, "text %q", text)
	}
}

func TestWhenParserClockMatchingReference(t *testing.T) {
	parser := NewWhenParser()
	ref := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

	at, found, err := parser.Parse("tomorrow 9am", ref)

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 20, at.Day())
	assert.Equal(t, 9, at.Hour())
}

func TestWhenParserClockNearMidnight(t *testing.T) {
	parser := NewWhenParser()
	ref := time.Date(2026, time.October, 19, 23, 30, 0, 0, time.UTC)

	_, found, err := parser.Parse("tomorrow", ref)
	require.NoError(t, err)
	assert.False(t, found)

	at, found, err := parser.Parse("tomorrow 3pm", ref)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 15, at.Hour())
}

func TestWhenParserNoExpression(t *testing.T) {
	parser := NewWhenParser()
	for _, text := range []string{"hello", "", "   "} {
		_, found, err := parser.Parse(text, time.Now())
		require.NoError(t, err)
		assert.False(t, found, "text %q", text)
	}
}
