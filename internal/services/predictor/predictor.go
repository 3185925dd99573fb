package predictor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"college-predictor/internal/metrics"
	"college-predictor/internal/models"
	"college-predictor/internal/services/catalog"
	"college-predictor/internal/utils"
)

// SnapshotSource hands out the current cutoff snapshot.
type SnapshotSource interface {
	Current() (*catalog.Snapshot, error)
}

// Service runs queries against the current catalog snapshot.
type Service struct {
	source  SnapshotSource
	order   Order
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithOrder sets the status ordering.
func WithOrder(order Order) Option {
	return func(s *Service) {
		s.order = order
	}
}

// WithMetrics records query metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a new predictor service.
func NewService(source SnapshotSource, opts ...Option) *Service {
	s := &Service{source: source, order: OrderSeverity}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Order returns the configured status order.
func (s *Service) Order() Order {
	return s.order
}

// Predict validates q and filters the snapshot current at call time. The
// same snapshot is used for the whole query even if a reload lands meanwhile.
func (s *Service) Predict(ctx context.Context, q models.Query) (*models.Result, error) {
	start := time.Now()
	requestID := uuid.NewString()
	logger := utils.GetLogger().With(utils.String("request_id", requestID))

	if err := q.Validate(); err != nil {
		logger.Warn("Rejected query", utils.Error(err))
		s.metrics.ObserveQuery(nil, time.Since(start))
		return nil, err
	}

	snap, err := s.source.Current()
	if err != nil {
		logger.Error("No cutoff snapshot available", utils.Error(err))
		s.metrics.ObserveQuery(nil, time.Since(start))
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches := FilterOrdered(snap.Records(), q, s.order)
	result := &models.Result{
		RequestID:  requestID,
		Query:      q,
		WindowLow:  q.WindowLow(),
		WindowHigh: q.WindowHigh(),
		Total:      len(matches),
		Counts:     CountByStatus(matches),
		Matches:    matches,
		Groups:     GroupByCollege(matches),
		SnapshotAt: snap.LoadedAt(),
	}

	took := time.Since(start)
	s.metrics.ObserveQuery(result, took)

	logger.Info("Prediction complete",
		utils.Float64("percentile", q.TargetPercentile),
		utils.String("category", q.Category),
		utils.Strings("branches", q.BranchFilter),
		utils.String("college", q.CollegeFilter),
		utils.Float64("buffer", q.UpperTolerance),
		utils.Float64("lower_limit", q.LowerTolerance),
		utils.Int("matches", result.Total),
		utils.Int64("snapshot_version", int64(snap.Version())),
		utils.Duration("took", took),
	)

	return result, nil
}
