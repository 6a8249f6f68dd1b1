package postgres_test

import "context"

func newCtx() context.Context {
	return context.Background()
}
