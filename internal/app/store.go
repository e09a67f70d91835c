package app

import "context"

// Reserved keys partitioning the store namespace.
const (
	QuestionsKey = "quiz_questions"
	UsersKey     = "quiz_users"
)

// Store abstracts the durable key-value medium (in-memory, SQLite, Redis, Postgres).
// Values are opaque text. A Write must be durable by the time it returns.
type Store interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
