package store

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Collection. Documents are kept in their BSON form
// so filters and sorting behave like the Mongo implementation for flat
// documents. The mutex only protects the map; it adds no ordering between
// writers, so concurrent updates to one document are last-write-wins.
type Memory[T any] struct {
	mu     sync.RWMutex
	docs   map[primitive.ObjectID]bson.M
	order  []primitive.ObjectID
	unique []string
}

var _ Collection[struct{}] = (*Memory[struct{}])(nil)

// NewMemory returns an empty store enforcing uniqueness on the given fields.
func NewMemory[T any](unique ...string) *Memory[T] {
	return &Memory[T]{
		docs:   make(map[primitive.ObjectID]bson.M),
		unique: unique,
	}
}

func (m *Memory[T]) Create(_ context.Context, doc *T) error {
	d, err := toM(doc)
	if err != nil {
		return err
	}
	id, ok := d["_id"].(primitive.ObjectID)
	if !ok {
		return errors.New("store: document has no _id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[id]; exists {
		return ErrDuplicate
	}
	if m.violatesUnique(id, d) {
		return ErrDuplicate
	}
	m.docs[id] = d
	m.order = append(m.order, id)
	return nil
}

func (m *Memory[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return m.FindOne(ctx, Filter{"_id": oid})
}

func (m *Memory[T]) FindOne(_ context.Context, f Filter) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if d := m.docs[id]; matches(d, f) {
			return decodeM[T](d)
		}
	}
	return nil, ErrNotFound
}

func (m *Memory[T]) Find(_ context.Context, f Filter, opts ...FindOption) ([]T, error) {
	o := collectOptions(opts)

	m.mu.RLock()
	hits := make([]bson.M, 0)
	for _, id := range m.order {
		if d := m.docs[id]; matches(d, f) {
			hits = append(hits, d)
		}
	}
	m.mu.RUnlock()

	if o.sortField != "" {
		sort.SliceStable(hits, func(i, j int) bool {
			c := compare(hits[i][o.sortField], hits[j][o.sortField])
			if o.sortDesc {
				return c > 0
			}
			return c < 0
		})
	}

	out := make([]T, 0, len(hits))
	for _, d := range hits {
		doc, err := decodeM[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (m *Memory[T]) UpdateByID(_ context.Context, id string, patch Patch, validateDoc bool) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.docs[oid]
	if !ok {
		return nil, ErrNotFound
	}

	merged := make(bson.M, len(current)+len(patch))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range patch {
		if k == "_id" {
			continue
		}
		nv, err := normalize(v)
		if err != nil {
			return nil, err
		}
		merged[k] = nv
	}

	out, err := decodeM[T](merged)
	if err != nil {
		return nil, err
	}
	if validateDoc {
		if err := validate(out); err != nil {
			return nil, err
		}
	}
	if m.violatesUnique(oid, merged) {
		return nil, ErrDuplicate
	}
	m.docs[oid] = merged
	return out, nil
}

func (m *Memory[T]) DeleteByID(_ context.Context, id string) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[oid]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.docs, oid)
	for i, v := range m.order {
		if v == oid {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return decodeM[T](d)
}

func (m *Memory[T]) Count(_ context.Context, f Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, d := range m.docs {
		if matches(d, f) {
			n++
		}
	}
	return n, nil
}

// violatesUnique must be called with mu held.
func (m *Memory[T]) violatesUnique(self primitive.ObjectID, d bson.M) bool {
	for _, field := range m.unique {
		v, ok := d[field]
		if !ok {
			continue
		}
		for id, other := range m.docs {
			if id != self && reflect.DeepEqual(other[field], v) {
				return true
			}
		}
	}
	return false
}

func matches(d bson.M, f Filter) bool {
	for k, want := range f {
		w, err := normalize(want)
		if err != nil {
			return false
		}
		if !reflect.DeepEqual(d[k], w) {
			return false
		}
	}
	return true
}

func toM(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d bson.M
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// normalize round-trips v through BSON so it compares equal to stored values.
func normalize(v any) (any, error) {
	d, err := toM(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return d["v"], nil
}

func compare(a, b any) int {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp3(x < y, x > y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp3(x < y, x > y)
		}
	case int32:
		if y, ok := b.(int32); ok {
			return cmp3(x < y, x > y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp3(x < y, x > y)
		}
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			return cmp3(x < y, x > y)
		}
	}
	return 0
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}
