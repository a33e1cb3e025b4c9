package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnilink/internal/app/db"
	"alumnilink/internal/app/entity"
)

func ids(events []entity.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func decodeEvents(t *testing.T, raw []byte) []entity.Event {
	t.Helper()
	var events []entity.Event
	require.NoError(t, json.Unmarshal(raw, &events))
	return events
}

func newEvents() *Collection[entity.Event] {
	return NewCollection(New(db.NewMemory()), KeyEvents, seedEvents)
}

func TestCreatePrepends(t *testing.T) {
	ctx := context.Background()
	c := newEvents()

	require.NoError(t, c.Create(ctx, entity.Event{ID: "4"}))
	assert.Equal(t, []string{"4", "1", "2", "3"}, ids(c.List(ctx)))

	assert.ErrorIs(t, c.Create(ctx, entity.Event{ID: "2"}), ErrDuplicateID)
	assert.Len(t, c.List(ctx), 4)
}

func TestUpdateReplacesOnlyThatRecord(t *testing.T) {
	ctx := context.Background()
	c := newEvents()

	require.NoError(t, c.Update(ctx, entity.Event{ID: "2", Title: "Renamed"}))

	got := c.List(ctx)
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
	assert.Equal(t, "Renamed", got[1].Title)
	assert.Zero(t, got[1].RSVPs)
	assert.Equal(t, seedEvents()[0], got[0])
	assert.Equal(t, seedEvents()[2], got[2])

	assert.ErrorIs(t, c.Update(ctx, entity.Event{ID: "missing"}), ErrNotFound)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	c := newEvents()

	require.NoError(t, c.Delete(ctx, "2"))
	got := c.List(ctx)
	assert.Equal(t, []entity.Event{seedEvents()[0], seedEvents()[2]}, got)

	assert.ErrorIs(t, c.Delete(ctx, "2"), ErrNotFound)
	assert.Len(t, c.List(ctx), 2)
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	c := newEvents()

	created, err := c.Upsert(ctx, entity.Event{ID: "1", Title: "Changed"})
	require.NoError(t, err)
	assert.False(t, created)

	created, err = c.Upsert(ctx, entity.Event{ID: "7"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"1", "2", "3", "7"}, ids(c.List(ctx)))
}

func TestMergeAddsOnlyNewIDs(t *testing.T) {
	ctx := context.Background()
	c := newEvents()

	added, err := c.Merge(ctx, []entity.Event{{ID: "2"}, {ID: "8"}, {ID: "9"}, {ID: "8"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"8", "9"}, ids(added))
	assert.Equal(t, []string{"8", "9", "1", "2", "3"}, ids(c.List(ctx)))
}

func TestHelpersDoNotMutateInput(t *testing.T) {
	items := seedEvents()

	_, ok := RemoveByID(items, "1")
	require.True(t, ok)
	_, ok = ReplaceByID(items, entity.Event{ID: "3", Title: "x"})
	require.True(t, ok)

	assert.Equal(t, seedEvents(), items)
}
