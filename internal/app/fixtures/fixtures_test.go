package fixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	now := time.Date(2026, time.November, 20, 9, 30, 0, 0, time.UTC)

	set, err := Load(now)
	require.NoError(t, err)

	require.Len(t, set.Alumni, 5)
	require.Len(t, set.Students, 2)
	require.Len(t, set.Events, 3)

	assert.Equal(t, "1", set.Alumni[0].ID)
	assert.Equal(t, "Dr. Evelyn Reed", set.Alumni[0].Name)
	assert.Len(t, set.Alumni[0].Skills, 5)
	assert.Equal(t, "student-2", set.Students[1].ID)

	// Month arithmetic rolls over the year.
	assert.Equal(t, "2026-12-15T00:00:00Z", set.Events[0].Date)
	assert.Equal(t, "2026-12-28T00:00:00Z", set.Events[1].Date)
	assert.Equal(t, "2027-01-10T00:00:00Z", set.Events[2].Date)
	assert.Equal(t, 250, set.Events[1].RSVPs)
	assert.Equal(t, "Tech Talk: AI in Modern Business", set.Events[1].Title)
}

func TestLoadReturnsIndependentCopies(t *testing.T) {
	first, err := Load(time.Now())
	require.NoError(t, err)
	first.Alumni[0].Skills[0] = "changed"
	first.Alumni[0].Name = "changed"

	second, err := Load(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning", second.Alumni[0].Skills[0])
	assert.Equal(t, "Dr. Evelyn Reed", second.Alumni[0].Name)
}

func TestSeedRecordsAreValid(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	set := MustLoad(now)

	for _, a := range set.Alumni {
		assert.Nil(t, a.Validate(now), a.ID)
	}
	for _, s := range set.Students {
		assert.Nil(t, s.Validate(now), s.ID)
	}
	for _, e := range set.Events {
		assert.Nil(t, e.Validate(now), e.ID)
	}
}
