package blob

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadlines(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	write, read := deadlines(context.Background(), now)
	assert.Equal(t, now.Add(gridfsTimeout), write)
	assert.True(t, read.IsZero(), "downloads without a request deadline must not expire")

	ctx, cancel := context.WithDeadline(context.Background(), now.Add(2*time.Minute))
	defer cancel()
	write, read = deadlines(ctx, now)
	assert.Equal(t, now.Add(2*time.Minute), write)
	assert.Equal(t, now.Add(2*time.Minute), read)
}
