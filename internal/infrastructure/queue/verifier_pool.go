package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/api/metrics"
	"github.com/Sirpyerre/file-manager/internal/core/domain"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrPoolStopped is returned for verifications submitted after the pool shut down.
var ErrPoolStopped = errors.New("liveness verifier pool stopped")

type verifyJob struct {
	ctx       context.Context
	reference []byte
	sample    []byte
	result    chan<- verifyResult
}

type verifyResult struct {
	match domain.FaceMatch
	err   error
}

// VerifierPool bounds how many face verifications run at once. Jobs are
// sharded by reference image, so retries for one account queue behind each
// other instead of fanning out across workers.
type VerifierPool struct {
	workers []chan verifyJob
	inner   ports.LivenessVerifier
	log     zerolog.Logger
	done    chan struct{}
}

// NewVerifierPool creates a pool with numWorkers workers in front of inner.
// If numWorkers <= 0, defaultWorkers is used.
func NewVerifierPool(numWorkers int, inner ports.LivenessVerifier, log zerolog.Logger) *VerifierPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	p := &VerifierPool{
		workers: make([]chan verifyJob, numWorkers),
		inner:   inner,
		log:     log,
		done:    make(chan struct{}),
	}
	for i := range p.workers {
		p.workers[i] = make(chan verifyJob, channelBuffer)
	}
	return p
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *VerifierPool) Start(ctx context.Context) {
	for i, ch := range p.workers {
		go p.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		close(p.done)
	}()
}

// Verify queues the comparison and waits for its result.
func (p *VerifierPool) Verify(ctx context.Context, reference, sample []byte) (domain.FaceMatch, error) {
	result := make(chan verifyResult, 1)
	idx := p.shardIndex(reference)
	job := verifyJob{ctx: ctx, reference: reference, sample: sample, result: result}

	select {
	case p.workers[idx] <- job:
		metrics.LivenessQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(p.workers[idx])))
	case <-ctx.Done():
		return domain.FaceMatch{}, ctx.Err()
	case <-p.done:
		return domain.FaceMatch{}, ErrPoolStopped
	}

	select {
	case r := <-result:
		return r.match, r.err
	case <-ctx.Done():
		return domain.FaceMatch{}, ctx.Err()
	case <-p.done:
		return domain.FaceMatch{}, ErrPoolStopped
	}
}

func (p *VerifierPool) shardIndex(reference []byte) int {
	h := fnv.New32a()
	_, _ = h.Write(reference)
	return int(h.Sum32() % uint32(len(p.workers)))
}

func (p *VerifierPool) runWorker(ctx context.Context, id int, ch <-chan verifyJob) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-ch:
			metrics.LivenessQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if job.ctx.Err() != nil {
				job.result <- verifyResult{err: job.ctx.Err()}
				continue
			}

			start := time.Now()
			match, err := p.inner.Verify(job.ctx, job.reference, job.sample)
			outcome := "mismatch"
			switch {
			case err != nil:
				outcome = "error"
				if !errors.Is(err, domain.ErrLiveness) {
					p.log.Error().Err(err).Int("worker_id", id).Msg("face verification failed")
				}
			case match.Matched:
				outcome = "match"
			}
			metrics.LivenessDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

			job.result <- verifyResult{match: match, err: err}
		}
	}
}
