package store

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// FirebaseOptions selects the database and the service-account credentials.
// CredentialsJSON wins over CredentialsFile when both are set.
type FirebaseOptions struct {
	DatabaseURL     string
	CredentialsJSON []byte
	CredentialsFile string
}

// Firebase stores the tree in a Firebase Realtime Database.
type Firebase struct {
	client *db.Client
}

func NewFirebase(ctx context.Context, opts FirebaseOptions) (*Firebase, error) {
	if opts.DatabaseURL == "" {
		return nil, errors.New("firebase database url is required")
	}
	var cred option.ClientOption
	switch {
	case len(opts.CredentialsJSON) > 0:
		cred = option.WithCredentialsJSON(opts.CredentialsJSON)
	case opts.CredentialsFile != "":
		cred = option.WithCredentialsFile(opts.CredentialsFile)
	default:
		return nil, errors.New("firebase credentials missing; set FIREBASE_CREDENTIALS_BASE64 or a credentials file")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: opts.DatabaseURL}, cred)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase database: %w", err)
	}
	return &Firebase{client: client}, nil
}

func (f *Firebase) recipeRef(visitor, mood string) *db.Ref {
	return f.client.NewRef(visitorKey(visitor)).Child(Key(mood))
}

func (f *Firebase) SaveRecipe(ctx context.Context, visitor string, r Recipe) error {
	if err := checkRecipePath(visitor, r); err != nil {
		return err
	}
	if err := f.recipeRef(visitor, r.Mood).Child(r.ID).Set(ctx, r); err != nil {
		return fmt.Errorf("save recipe %s: %w", r.ID, err)
	}
	return nil
}

func (f *Firebase) Recipe(ctx context.Context, visitor, mood, id string) (Recipe, error) {
	if Key(visitor) == "" || Key(mood) == "" || Key(id) == "" {
		return Recipe{}, ErrNotFound
	}
	var r *Recipe
	if err := f.recipeRef(visitor, mood).Child(Key(id)).Get(ctx, &r); err != nil {
		return Recipe{}, fmt.Errorf("get recipe %s: %w", id, err)
	}
	if r == nil {
		return Recipe{}, ErrNotFound
	}
	r.ID = Key(id)
	return *r, nil
}

func (f *Firebase) History(ctx context.Context, visitor string) (History, error) {
	if Key(visitor) == "" {
		return History{}, nil
	}
	var h History
	if err := f.client.NewRef(visitorKey(visitor)).Get(ctx, &h); err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	if h == nil {
		h = History{}
	}
	for _, byID := range h {
		for id, r := range byID {
			r.ID = id
			byID[id] = r
		}
	}
	return h, nil
}

func (f *Firebase) IncrementHits(ctx context.Context) (int64, error) {
	var count int64
	err := f.client.NewRef(hitCountPath).Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		var current int64
		if err := node.Unmarshal(&current); err != nil {
			return nil, err
		}
		count = current + 1
		return count, nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment hit count: %w", err)
	}
	return count, nil
}

func (f *Firebase) SaveFeedback(ctx context.Context, visitor string, fb Feedback) (string, error) {
	if Key(visitor) == "" {
		return "", errors.New("store: visitor key is empty")
	}
	ref, err := f.client.NewRef(feedbackRoot).Child(visitorKey(visitor)).Push(ctx, fb)
	if err != nil {
		return "", fmt.Errorf("save feedback: %w", err)
	}
	return ref.Key, nil
}
