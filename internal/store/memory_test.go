package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type record struct {
	ID     primitive.ObjectID  `bson:"_id,omitempty"`
	Owner  *primitive.ObjectID `bson:"owner,omitempty"`
	Email  string              `bson:"email"`
	Kind   string              `bson:"kind"`
	Amount float64             `bson:"amount"`
	Done   bool                `bson:"done"`
	At     time.Time           `bson:"at"`
}

func (r *record) Validate() error {
	if r.Kind != "a" && r.Kind != "b" {
		return Invalid("kind", "must be a or b")
	}
	return nil
}

func newRecord(email, kind string, at time.Time) *record {
	return &record{ID: primitive.NewObjectID(), Email: email, Kind: kind, At: at}
}

func TestMemoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[record]("email")
	now := time.Now().UTC().Truncate(time.Millisecond)

	first := newRecord("a@x.com", "a", now)
	second := newRecord("b@x.com", "b", now.Add(time.Hour))
	require.NoError(t, m.Create(ctx, first))
	require.NoError(t, m.Create(ctx, second))

	got, err := m.FindByID(ctx, first.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
	assert.True(t, now.Equal(got.At))

	all, err := m.Find(ctx, nil, SortBy("at", true))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	kindB, err := m.Find(ctx, Filter{"kind": "b"})
	require.NoError(t, err)
	require.Len(t, kindB, 1)
	assert.Equal(t, second.ID, kindB[0].ID)

	none, err := m.Find(ctx, Filter{"nosuchfield": "x"})
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestMemoryFilterByReference(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[record]()
	owner := primitive.NewObjectID()

	owned := newRecord("o@x.com", "a", time.Now())
	owned.Owner = &owner
	require.NoError(t, m.Create(ctx, owned))
	require.NoError(t, m.Create(ctx, newRecord("n@x.com", "a", time.Now())))

	got, err := m.Find(ctx, Filter{"owner": owner})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, owned.ID, got[0].ID)

	n, err := m.Count(ctx, Filter{"kind": "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryUniqueField(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[record]("email")
	require.NoError(t, m.Create(ctx, newRecord("dup@x.com", "a", time.Now())))

	err := m.Create(ctx, newRecord("dup@x.com", "b", time.Now()))
	assert.ErrorIs(t, err, ErrDuplicate)

	other := newRecord("other@x.com", "a", time.Now())
	require.NoError(t, m.Create(ctx, other))
	_, err = m.UpdateByID(ctx, other.ID.Hex(), Patch{"email": "dup@x.com"}, false)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryUpdateByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[record]()
	r := newRecord("u@x.com", "a", time.Now())
	require.NoError(t, m.Create(ctx, r))

	updated, err := m.UpdateByID(ctx, r.ID.Hex(), Patch{"done": true, "amount": 12.5}, true)
	require.NoError(t, err)
	assert.True(t, updated.Done)
	assert.Equal(t, 12.5, updated.Amount)
	assert.Equal(t, "u@x.com", updated.Email)

	_, err = m.UpdateByID(ctx, r.ID.Hex(), Patch{"kind": "z"}, true)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "kind", verr.Field)

	// Without validation the write goes through unchecked.
	_, err = m.UpdateByID(ctx, r.ID.Hex(), Patch{"kind": "z"}, false)
	assert.NoError(t, err)

	_, err = m.UpdateByID(ctx, primitive.NewObjectID().Hex(), Patch{"done": true}, false)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.UpdateByID(ctx, "not-an-id", Patch{"done": true}, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[record]()
	r := newRecord("d@x.com", "a", time.Now())
	require.NoError(t, m.Create(ctx, r))

	deleted, err := m.DeleteByID(ctx, r.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, r.ID, deleted.ID)

	_, err = m.FindByID(ctx, r.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.DeleteByID(ctx, r.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryConcurrentUpdatesLastWriteWins(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[record]()
	r := newRecord("c@x.com", "a", time.Now())
	require.NoError(t, m.Create(ctx, r))

	var wg sync.WaitGroup
	for _, kind := range []string{"a", "b"} {
		wg.Add(1)
		go func(kind string) {
			defer wg.Done()
			_, err := m.UpdateByID(ctx, r.ID.Hex(), Patch{"kind": kind}, true)
			assert.NoError(t, err)
		}(kind)
	}
	wg.Wait()

	got, err := m.FindByID(ctx, r.ID.Hex())
	require.NoError(t, err)
	assert.Contains(t, []string{"a", "b"}, got.Kind)
}

func TestMemoryCreateRequiresID(t *testing.T) {
	m := NewMemory[record]()
	err := m.Create(context.Background(), &record{Email: "x@x.com", Kind: "a"})
	assert.Error(t, err)
}
