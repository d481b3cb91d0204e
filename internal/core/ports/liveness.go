package ports

import (
	"context"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// FaceEncoder turns an image into a face feature vector. It returns
// domain.ErrNoFaceDetected when the image holds no face.
type FaceEncoder interface {
	Encode(ctx context.Context, image []byte) ([]float64, error)
}

// LivenessVerifier compares a live face sample with an enrolled reference.
type LivenessVerifier interface {
	Verify(ctx context.Context, reference, sample []byte) (domain.FaceMatch, error)
}

// Capturer grabs one image from a camera, blocking until the operator
// confirms or cancels.
type Capturer interface {
	Capture(ctx context.Context) ([]byte, error)
}
