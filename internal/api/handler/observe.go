package handler

import (
	"errors"

	"github.com/Sirpyerre/file-manager/internal/api/metrics"
	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

var resultKinds = []struct {
	kind  error
	label string
}{
	{domain.ErrValidation, "validation"},
	{domain.ErrUnauthenticated, "unauthenticated"},
	{domain.ErrForbidden, "forbidden"},
	{domain.ErrNotFound, "not_found"},
	{domain.ErrConflict, "conflict"},
	{domain.ErrPolicy, "policy"},
	{domain.ErrLiveness, "liveness_failed"},
}

// resultLabel turns an operation outcome into a low-cardinality label.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	for _, rk := range resultKinds {
		if errors.Is(err, rk.kind) {
			return rk.label
		}
	}
	return "error"
}

func observeOperation(operation string, err error) {
	metrics.FileOperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
}
