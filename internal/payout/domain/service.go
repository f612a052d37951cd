package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Attempt executes one payout try for a claimed job. A nil return means
	// the payout is complete (or was already complete); an error asks the
	// queue to apply its retry policy.
	Attempt(ctx context.Context, job Job) error

	GetByKey(ctx context.Context, key string) (Payout, error)
}

var (
	ErrInvalidPayload     = errors.New("invalid_job_payload")
	ErrMissingDestination = errors.New("missing_destination_key")
	ErrNotFound           = errors.New("not_found")
)
