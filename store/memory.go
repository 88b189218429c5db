package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Memory is an in-process Store for tests and local runs. Like the
// database, it keeps visitors and the analytics and feedback nodes under
// one root.
type Memory struct {
	mu   sync.Mutex
	root map[string]any // History, analyticsNode or feedbackNode
	seq  int
}

type (
	analyticsNode map[string]int64
	feedbackNode  map[string]map[string]Feedback
)

func NewMemory() *Memory {
	return &Memory{root: make(map[string]any)}
}

// node returns the child of the root at key as a T, creating it when
// create is set. A child of another kind is an error.
func node[T ~map[K]V, K comparable, V any](m *Memory, key string, create bool) (T, error) {
	switch n := m.root[key].(type) {
	case T:
		return n, nil
	case nil:
		if !create {
			return nil, nil
		}
		fresh := make(T)
		m.root[key] = fresh
		return fresh, nil
	default:
		return nil, fmt.Errorf("store: /%s holds a %T", key, n)
	}
}

func (m *Memory) SaveRecipe(_ context.Context, visitor string, r Recipe) error {
	if err := checkRecipePath(visitor, r); err != nil {
		return err
	}
	mood := Key(r.Mood)

	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := node[History](m, visitorKey(visitor), true)
	if err != nil {
		return err
	}
	if h[mood] == nil {
		h[mood] = make(map[string]Recipe)
	}
	h[mood][r.ID] = cloneRecipe(r)
	return nil
}

func (m *Memory) Recipe(_ context.Context, visitor, mood, id string) (Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := node[History](m, visitorKey(visitor), false)
	if err != nil {
		return Recipe{}, err
	}
	r, ok := h[Key(mood)][id]
	if !ok {
		return Recipe{}, ErrNotFound
	}
	return cloneRecipe(r), nil
}

func (m *Memory) History(_ context.Context, visitor string) (History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := node[History](m, visitorKey(visitor), false)
	if err != nil {
		return nil, err
	}
	out := make(History)
	for mood, byID := range h {
		out[mood] = make(map[string]Recipe, len(byID))
		for id, r := range byID {
			out[mood][id] = cloneRecipe(r)
		}
	}
	return out, nil
}

func (m *Memory) IncrementHits(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := node[analyticsNode](m, analyticsRoot, true)
	if err != nil {
		return 0, err
	}
	a[hitCountKey]++
	return a[hitCountKey], nil
}

func (m *Memory) SaveFeedback(_ context.Context, visitor string, fb Feedback) (string, error) {
	if Key(visitor) == "" {
		return "", errors.New("store: visitor key is empty")
	}
	visitor = visitorKey(visitor)

	m.mu.Lock()
	defer m.mu.Unlock()
	all, err := node[feedbackNode](m, feedbackRoot, true)
	if err != nil {
		return "", err
	}
	m.seq++
	id := fmt.Sprintf("fb_%06d", m.seq)
	if all[visitor] == nil {
		all[visitor] = make(map[string]Feedback)
	}
	all[visitor][id] = fb
	return id, nil
}

// Feedback returns the stored feedback for visitor.
func (m *Memory) Feedback(visitor string) map[string]Feedback {
	m.mu.Lock()
	defer m.mu.Unlock()
	all, _ := node[feedbackNode](m, feedbackRoot, false)
	out := make(map[string]Feedback, len(all[visitorKey(visitor)]))
	for id, fb := range all[visitorKey(visitor)] {
		out[id] = fb
	}
	return out
}

func checkRecipePath(visitor string, r Recipe) error {
	switch {
	case Key(visitor) == "":
		return errors.New("store: visitor key is empty")
	case Key(r.Mood) == "":
		return errors.New("store: recipe mood is empty")
	case r.ID == "":
		return errors.New("store: recipe id is empty")
	}
	return nil
}

func cloneRecipe(r Recipe) Recipe {
	r.Ingredients = append([]string(nil), r.Ingredients...)
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	return r
}
