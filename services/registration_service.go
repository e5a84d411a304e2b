//go:generate go run go.uber.org/mock/mockgen -source=registration_service.go -destination=../mocks/mock_registration_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"touroku/domain/registration"
	"touroku/errors"
	"touroku/observability"
	"touroku/repositories"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("touroku/services")

type IRegistrationService interface {
	RegisterOrQuery(ctx context.Context, csn string, count int64) (registration.Response, error)
}

type RegistrationService struct {
	repository   repositories.IRegistrationRepository
	log          *slog.Logger
	metrics      *observability.Metrics
	now          func() time.Time
	sequential   bool
	verifyWrites bool
}

type RegistrationOption func(*RegistrationService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) RegistrationOption {
	return func(s *RegistrationService) { s.now = now }
}

func WithMetrics(metrics *observability.Metrics) RegistrationOption {
	return func(s *RegistrationService) { s.metrics = metrics }
}

// WithSequentialWrites looks the record up, builds the response, then persists,
// as two separate store calls. Concurrent registrations of one CSN race and the
// last write wins.
func WithSequentialWrites() RegistrationOption {
	return func(s *RegistrationService) { s.sequential = true }
}

// WithWriteVerification reads the record back after every write.
func WithWriteVerification() RegistrationOption {
	return func(s *RegistrationService) { s.verifyWrites = true }
}

func NewRegistrationService(repository repositories.IRegistrationRepository, log *slog.Logger, opts ...RegistrationOption) *RegistrationService {
	s := &RegistrationService{
		repository: repository,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// RegisterOrQuery registers count for csn and reports the state found before the write.
// Errors are either errors.ErrValidation or errors.ErrStoreUnavailable and are never retried.
func (s *RegistrationService) RegisterOrQuery(ctx context.Context, csn string, count int64) (registration.Response, error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.RegisterOrQuery")
	defer span.End()

	// 1. Validate before touching the store
	cmd := registration.RegisterCommand{CSN: csn, Count: count}
	if err := cmd.Validate(); err != nil {
		s.metrics.IncrementError("validation")
		span.SetStatus(codes.Error, "validation")
		return registration.Response{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	// 2. One canonical instant, at the precision every backend can store
	now := s.now().UTC().Truncate(time.Millisecond)
	record := registration.Record{CSN: csn, RegisteredAt: now, Count: count}

	// 3. Decide and persist
	var (
		response registration.Response
		err      error
	)
	if s.sequential {
		response, err = s.registerSequential(ctx, record)
	} else {
		response, err = s.registerAtomic(ctx, record)
	}
	if err == nil && s.verifyWrites {
		err = s.verify(ctx, csn)
	}
	if err != nil {
		s.metrics.IncrementError("store")
		span.RecordError(err)
		span.SetStatus(codes.Error, "store")
		s.log.Error("Registration failed", "csn", csn, "error", err)
		return registration.Response{}, err
	}

	s.metrics.IncrementOutcome(string(response.Status))
	span.SetAttributes(attribute.String("registration.status", string(response.Status)))
	s.log.Info("Registration handled",
		"csn", csn,
		"status", response.Status,
		"count", count,
		"reported_count", response.Count,
	)
	return response, nil
}

func (s *RegistrationService) registerAtomic(ctx context.Context, record registration.Record) (registration.Response, error) {
	start := time.Now()
	previous, err := s.repository.Swap(ctx, record)
	s.metrics.ObserveStore("swap", start)
	if err != nil {
		return registration.Response{}, storeError(err)
	}
	return registration.NewResponse(record, previous), nil
}

func (s *RegistrationService) registerSequential(ctx context.Context, record registration.Record) (registration.Response, error) {
	start := time.Now()
	previous, err := s.repository.FindByCSN(ctx, record.CSN)
	s.metrics.ObserveStore("find", start)
	if err != nil {
		return registration.Response{}, storeError(err)
	}

	// The response reflects the lookup, the write comes after
	response := registration.NewResponse(record, previous)

	start = time.Now()
	err = s.repository.Upsert(ctx, record)
	s.metrics.ObserveStore("upsert", start)
	if err != nil {
		return registration.Response{}, storeError(err)
	}
	return response, nil
}

func (s *RegistrationService) verify(ctx context.Context, csn string) error {
	start := time.Now()
	stored, err := s.repository.FindByCSN(ctx, csn)
	s.metrics.ObserveStore("find", start)
	if err != nil {
		return storeError(err)
	}
	if stored == nil {
		return errors.ErrNotFoundPostWrite
	}
	return nil
}

func storeError(err error) error {
	return fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
}
