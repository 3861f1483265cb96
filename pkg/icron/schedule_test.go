package icron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTriggerInfo(t *testing.T) {
	ref := time.Date(2024, 5, 10, 12, 40, 0, 0, time.UTC)

	info, err := GetTriggerInfo("*/30 * * * *", ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 10, 13, 0, 0, 0, time.UTC), info.Next)
	assert.Equal(t, time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC), info.Last)
	assert.Equal(t, 20*time.Minute, info.TimeUntilNext)
	assert.Equal(t, 10*time.Minute, info.TimeSinceLast)
}

func TestGetTriggerInfo_Daily(t *testing.T) {
	ref := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	info, err := GetTriggerInfo("0 3 * * *", ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 11, 3, 0, 0, 0, time.UTC), info.Next)
	assert.Equal(t, time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC), info.Last)
}

func TestGetTriggerInfo_Invalid(t *testing.T) {
	_, err := GetTriggerInfo("every day", time.Now())
	assert.Error(t, err)

	// six field expressions are not accepted
	_, err = GetTriggerInfo("0 */30 * * * *", time.Now())
	assert.Error(t, err)
}
