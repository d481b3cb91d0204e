package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

type stubVerifier struct {
	calls atomic.Int32
	fn    func(ctx context.Context, reference, sample []byte) (domain.FaceMatch, error)
}

func (s *stubVerifier) Verify(ctx context.Context, reference, sample []byte) (domain.FaceMatch, error) {
	s.calls.Add(1)
	return s.fn(ctx, reference, sample)
}

func TestVerifierPool_ReturnsInnerResult(t *testing.T) {
	inner := &stubVerifier{fn: func(_ context.Context, ref, sample []byte) (domain.FaceMatch, error) {
		if string(ref) == string(sample) {
			return domain.FaceMatch{Matched: true}, nil
		}
		return domain.FaceMatch{Distance: 0.9}, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewVerifierPool(2, inner, zerolog.Nop())
	pool.Start(ctx)

	match, err := pool.Verify(ctx, []byte("a"), []byte("a"))
	if err != nil || !match.Matched {
		t.Fatalf("expected match, got %+v %v", match, err)
	}
	match, err = pool.Verify(ctx, []byte("a"), []byte("b"))
	if err != nil || match.Matched {
		t.Fatalf("expected mismatch, got %+v %v", match, err)
	}
}

func TestVerifierPool_PropagatesErrors(t *testing.T) {
	inner := &stubVerifier{fn: func(context.Context, []byte, []byte) (domain.FaceMatch, error) {
		return domain.FaceMatch{}, domain.ErrNoFaceDetected
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewVerifierPool(1, inner, zerolog.Nop())
	pool.Start(ctx)

	if _, err := pool.Verify(ctx, []byte("a"), []byte("b")); !errors.Is(err, domain.ErrNoFaceDetected) {
		t.Fatalf("expected no face error, got %v", err)
	}
}

func TestVerifierPool_Concurrent(t *testing.T) {
	inner := &stubVerifier{fn: func(context.Context, []byte, []byte) (domain.FaceMatch, error) {
		time.Sleep(time.Millisecond)
		return domain.FaceMatch{Matched: true}, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewVerifierPool(4, inner, zerolog.Nop())
	pool.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := pool.Verify(ctx, []byte{byte(i)}, []byte("x")); err != nil {
				t.Errorf("verify %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if got := inner.calls.Load(); got != 50 {
		t.Fatalf("expected 50 verifications, got %d", got)
	}
}

func TestVerifierPool_CallerContextCancelled(t *testing.T) {
	release := make(chan struct{})
	inner := &stubVerifier{fn: func(context.Context, []byte, []byte) (domain.FaceMatch, error) {
		<-release
		return domain.FaceMatch{Matched: true}, nil
	}}
	poolCtx, stop := context.WithCancel(context.Background())
	defer stop()
	defer close(release)

	pool := NewVerifierPool(1, inner, zerolog.Nop())
	pool.Start(poolCtx)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := pool.Verify(ctx, []byte("a"), []byte("a")); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestVerifierPool_Stopped(t *testing.T) {
	inner := &stubVerifier{fn: func(context.Context, []byte, []byte) (domain.FaceMatch, error) {
		return domain.FaceMatch{Matched: true}, nil
	}}
	poolCtx, stop := context.WithCancel(context.Background())
	pool := NewVerifierPool(1, inner, zerolog.Nop())
	pool.Start(poolCtx)
	stop()

	deadline := time.After(time.Second)
	for {
		_, err := pool.Verify(context.Background(), []byte("a"), []byte("a"))
		if errors.Is(err, ErrPoolStopped) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("pool did not report stop, last err %v", err)
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}
