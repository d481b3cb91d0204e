package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

// DefaultFaceThreshold is the largest encoding distance still accepted as
// the same person.
const DefaultFaceThreshold = 0.4

// LivenessService compares face encodings produced by an external encoder.
type LivenessService struct {
	encoder   ports.FaceEncoder
	threshold float64
}

func NewLivenessService(encoder ports.FaceEncoder, threshold float64) *LivenessService {
	if threshold <= 0 {
		threshold = DefaultFaceThreshold
	}
	return &LivenessService{encoder: encoder, threshold: threshold}
}

// Verify encodes both images and matches them when their distance does not
// exceed the threshold. A missing face in either image is a liveness failure.
func (s *LivenessService) Verify(ctx context.Context, reference, sample []byte) (domain.FaceMatch, error) {
	refVec, err := s.encoder.Encode(ctx, reference)
	if err != nil {
		return domain.FaceMatch{}, fmt.Errorf("encode reference: %w", err)
	}
	liveVec, err := s.encoder.Encode(ctx, sample)
	if err != nil {
		return domain.FaceMatch{}, fmt.Errorf("encode sample: %w", err)
	}

	dist, err := FaceDistance(refVec, liveVec)
	if err != nil {
		return domain.FaceMatch{}, err
	}
	return domain.FaceMatch{Matched: dist <= s.threshold, Distance: dist}, nil
}

// FaceDistance is the Euclidean distance between two encodings.
func FaceDistance(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("face encodings differ in size: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
