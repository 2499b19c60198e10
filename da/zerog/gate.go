package zerog

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// admissionGate bounds how many submissions are admitted at once. A slot is
// held across every attempt of one submission.
type admissionGate struct {
	sem *semaphore.Weighted
}

func newAdmissionGate(capacity int64) *admissionGate {
	return &admissionGate{sem: semaphore.NewWeighted(capacity)}
}

func (g *admissionGate) enter(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

func (g *admissionGate) leave() {
	g.sem.Release(1)
}
