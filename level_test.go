package livelog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"error", LevelError},
		{"warn", LevelWarn},
		{"info", LevelInfo},
		{"http", LevelHTTP},
		{"verbose", LevelVerbose},
		{"debug", LevelDebug},
		{"silly", LevelSilly},
		{" DEBUG ", LevelDebug},
		{"Info", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseLevel("loud")
	require.Error(t, err)

	var lerr *InvalidLevelError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "loud", lerr.Name)
	assert.Equal(t,
		"there is no such log level: 'loud'. Available levels: [ error, warn, info, http, verbose, debug, silly ]",
		err.Error())
}

func TestLevel_Ranks(t *testing.T) {
	t.Parallel()

	for i, l := range Levels() {
		assert.Equal(t, i, l.Rank())
		assert.Equal(t, LevelNames()[i], l.String())
		assert.True(t, l.Valid())
	}
	assert.False(t, Level(7).Valid())
	assert.Equal(t, "level(7)", Level(7).String())
	assert.Equal(t, LevelInfo, DefaultLevel)
}

func TestIsAtLeastAsVerbose(t *testing.T) {
	t.Parallel()

	assert.True(t, IsAtLeastAsVerbose(LevelError, LevelInfo))
	assert.True(t, IsAtLeastAsVerbose(LevelInfo, LevelInfo))
	assert.False(t, IsAtLeastAsVerbose(LevelHTTP, LevelInfo))
	assert.True(t, IsAtLeastAsVerbose(LevelSilly, LevelSilly))
	assert.False(t, IsAtLeastAsVerbose(LevelWarn, LevelError))
}

func TestMostVerbose(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultLevel, MostVerbose())
	assert.Equal(t, LevelWarn, MostVerbose(LevelWarn))
	assert.Equal(t, LevelDebug, MostVerbose(LevelWarn, LevelDebug, LevelInfo))
	assert.Equal(t, LevelSilly, MostVerbose(LevelSilly, LevelError))
}
