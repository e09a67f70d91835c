package app

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"local-quiz/internal/domain"
)

// Repository is the typed view over a Store. It is the only writer of the
// questions and users collections.
//
// Storage failures never reach callers: reads degrade to an empty collection
// and failed writes are logged and dropped. A mutation whose read fails is
// skipped so it never overwrites data it could not see. Mutating calls return
// the updated collection so callers do not need to re-read it.
type Repository struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
}

func NewRepository(store Store, logger *log.Logger) *Repository {
	return NewRepositoryWithClock(store, logger, time.Now)
}

// NewRepositoryWithClock allows deterministic LastPlayed timestamps in tests.
func NewRepositoryWithClock(store Store, logger *log.Logger, now func() time.Time) *Repository {
	if logger == nil {
		logger = log.Default()
	}
	return &Repository{store: store, logger: logger, now: now}
}

// ListQuestions returns the question bank in insertion order.
func (r *Repository) ListQuestions(ctx context.Context) []domain.Question {
	questions, _ := loadCollection[domain.Question](ctx, r, QuestionsKey)
	return questions
}

// AddQuestion appends q. Id uniqueness is the caller's concern.
func (r *Repository) AddQuestion(ctx context.Context, q domain.Question) []domain.Question {
	questions, ok := loadCollection[domain.Question](ctx, r, QuestionsKey)
	if !ok {
		return questions
	}
	questions = append(questions, q)
	r.save(ctx, QuestionsKey, questions)
	return questions
}

// UpdateQuestion replaces the first question whose id matches. Unknown ids are ignored.
func (r *Repository) UpdateQuestion(ctx context.Context, id string, q domain.Question) []domain.Question {
	questions, _ := loadCollection[domain.Question](ctx, r, QuestionsKey)
	for i := range questions {
		if questions[i].ID == id {
			questions[i] = q
			r.save(ctx, QuestionsKey, questions)
			return questions
		}
	}
	return questions
}

// RemoveQuestion drops every question with the given id. Unknown ids are ignored.
func (r *Repository) RemoveQuestion(ctx context.Context, id string) []domain.Question {
	questions, _ := loadCollection[domain.Question](ctx, r, QuestionsKey)
	kept := questions[:0]
	for _, q := range questions {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(questions) {
		return questions
	}
	r.save(ctx, QuestionsKey, kept)
	return kept
}

// ListUsers returns every user record in insertion order.
func (r *Repository) ListUsers(ctx context.Context) []domain.User {
	users, _ := loadCollection[domain.User](ctx, r, UsersKey)
	return users
}

// GetUser finds a user by case-insensitive name.
func (r *Repository) GetUser(ctx context.Context, name string) (domain.User, bool) {
	for _, user := range r.ListUsers(ctx) {
		if domain.SameName(user.Name, name) {
			return user, true
		}
	}
	return domain.User{}, false
}

// GetTopUsers returns at most n users by score descending.
// Users with equal scores keep their insertion order.
func (r *Repository) GetTopUsers(ctx context.Context, n int) []domain.User {
	if n <= 0 {
		return []domain.User{}
	}
	users := r.ListUsers(ctx)
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Score > users[j].Score
	})
	if len(users) > n {
		users = users[:n]
	}
	return users
}

// UpdateUserScore upserts the user keyed by case-insensitive name and stamps LastPlayed.
func (r *Repository) UpdateUserScore(ctx context.Context, name string, score, questionsAnswered int) []domain.User {
	users, ok := loadCollection[domain.User](ctx, r, UsersKey)
	if !ok {
		return users
	}
	now := r.now().UTC()

	found := false
	for i := range users {
		if domain.SameName(users[i].Name, name) {
			users[i].Score = score
			users[i].QuestionsAnswered = questionsAnswered
			users[i].LastPlayed = now
			found = true
			break
		}
	}
	if !found {
		users = append(users, domain.User{
			Name:              name,
			Score:             score,
			QuestionsAnswered: questionsAnswered,
			LastPlayed:        now,
		})
	}

	r.save(ctx, UsersKey, users)
	return users
}

// ClearAll removes both collections.
func (r *Repository) ClearAll(ctx context.Context) {
	for _, key := range []string{QuestionsKey, UsersKey} {
		if err := r.store.Delete(ctx, key); err != nil {
			r.logger.Printf("clear %s: %v", key, err)
		}
	}
}

// SeedDefaults fills an empty bank with the starter questions.
func (r *Repository) SeedDefaults(ctx context.Context) []domain.Question {
	questions, ok := loadCollection[domain.Question](ctx, r, QuestionsKey)
	if !ok || len(questions) > 0 {
		return questions
	}
	createdAt := domain.FormatTimestamp(r.now())
	for _, q := range DefaultQuestions(createdAt) {
		questions = r.AddQuestion(ctx, q)
	}
	return questions
}

// DefaultQuestions is the starter bank used when nothing is stored yet.
func DefaultQuestions(createdAt string) []domain.Question {
	return []domain.Question{
		{
			ID:            "1",
			Question:      "What is the capital of Brazil?",
			Options:       [domain.OptionCount]string{"São Paulo", "Rio de Janeiro", "Brasília", "Salvador"},
			CorrectAnswer: 2,
			CreatedAt:     createdAt,
		},
		{
			ID:            "2",
			Question:      "What is 2 + 2?",
			Options:       [domain.OptionCount]string{"3", "4", "5", "6"},
			CorrectAnswer: 1,
			CreatedAt:     createdAt,
		},
		{
			ID:            "3",
			Question:      "Which is the largest planet in the solar system?",
			Options:       [domain.OptionCount]string{"Earth", "Mars", "Jupiter", "Saturn"},
			CorrectAnswer: 2,
			CreatedAt:     createdAt,
		},
	}
}

// loadCollection decodes the collection stored under key. Absent, unreadable
// or malformed values all yield an empty, non-nil slice. The bool is false only
// when the store read itself failed.
func loadCollection[T any](ctx context.Context, r *Repository, key string) ([]T, bool) {
	items := make([]T, 0)
	raw, ok, err := r.store.Read(ctx, key)
	if err != nil {
		r.logger.Printf("load %s: %v", key, err)
		return items, false
	}
	if !ok || raw == "" {
		return items, true
	}
	var decoded []T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		r.logger.Printf("decode %s: %v", key, err)
		return items, true
	}
	return append(items, decoded...), true
}

func (r *Repository) save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Printf("encode %s: %v", key, err)
		return
	}
	if err := r.store.Write(ctx, key, string(data)); err != nil {
		r.logger.Printf("save %s: %v", key, err)
	}
}
