// Package store persists recipes, feedback and hit counts in a tree keyed
// by visitor (the client IP with dots replaced).
//
// Layout:
//
//	/{visitor}/{mood}/{recipeID}   recipe record
//	/analytics/hit_count           integer
//	/feedback/{visitor}/{pushID}   feedback record
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

const (
	analyticsRoot = "analytics"
	hitCountKey   = "hit_count"
	hitCountPath  = analyticsRoot + "/" + hitCountKey
	feedbackRoot  = "feedback"
)

// Recipe is a stored recipe: the generated draft plus request metadata.
type Recipe struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	PrepTime     string   `json:"prepTime"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Mood         string   `json:"mood"`
	Age          int      `json:"age,omitempty"`
	City         string   `json:"city,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// Feedback is one visitor rating of the site.
type Feedback struct {
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

// History groups a visitor's recipes by mood, then by recipe ID.
type History map[string]map[string]Recipe

// Store is implemented by Firebase and Memory.
type Store interface {
	SaveRecipe(ctx context.Context, visitor string, r Recipe) error
	Recipe(ctx context.Context, visitor, mood, id string) (Recipe, error)
	History(ctx context.Context, visitor string) (History, error)
	IncrementHits(ctx context.Context) (int64, error)
	SaveFeedback(ctx context.Context, visitor string, fb Feedback) (string, error)
}

var keyReplacer = strings.NewReplacer(".", "_", "$", "_", "#", "_", "[", "_", "]", "_", "/", "_")

// Key turns s into a single database path segment. IPs become e.g. 1_2_3_4.
func Key(s string) string {
	return keyReplacer.Replace(strings.TrimSpace(s))
}

// visitorKey is Key for the top-level visitor segment. Visitors share the
// root with the analytics and feedback nodes, so those names get a leading
// underscore and can never address them.
func visitorKey(visitor string) string {
	k := Key(visitor)
	switch strings.TrimLeft(k, "_") {
	case analyticsRoot, feedbackRoot:
		return "_" + k
	}
	return k
}

// NewRecipeID returns an identifier of the form recipe_1a2b3c4d.
func NewRecipeID() string {
	return "recipe_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
