package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDue_Relative(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"+30s", 30 * time.Second},
		{"+5m", 5 * time.Minute},
		{"+2h", 2 * time.Hour},
		{"+1d", 24 * time.Hour},
		{"+1w", 7 * 24 * time.Hour},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			before := time.Now()
			got, err := ParseDue(tc.input)
			require.NoError(t, err)

			assert.WithinDuration(t, before.Add(tc.want), got, 2*time.Second)
		})
	}
}

func TestParseDue_Absolute(t *testing.T) {
	got, err := ParseDue("2026-01-15 14:00")
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, 14, got.Hour())
}

func TestParseDue_NaturalLanguage(t *testing.T) {
	got, err := ParseDue("tomorrow")
	require.NoError(t, err)
	assert.True(t, got.After(time.Now()), "tomorrow is in the future")
}

func TestParseDue_Invalid(t *testing.T) {
	_, err := ParseDue("")
	assert.Error(t, err)

	_, err = ParseDue("   ")
	assert.Error(t, err)

	_, err = ParseDue("+5x")
	assert.Error(t, err)

	_, err = ParseDue("definitely not a date at all xyzzy")
	assert.Error(t, err)
}
