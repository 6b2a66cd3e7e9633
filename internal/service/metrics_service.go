package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tempo-go-api/internal/dto"
	"github.com/noah-isme/tempo-go-api/internal/models"
	"github.com/noah-isme/tempo-go-api/internal/repository"
)

// MetricsInvalidator drops cached metrics after a student's assignments change.
type MetricsInvalidator interface {
	Invalidate(ctx context.Context, studentID uint)
}

// MetricsService aggregates performance over corrected assignments.
type MetricsService interface {
	MetricsInvalidator
	GetMetrics(ctx context.Context, studentID uint) (dto.StudentMetricsResponse, error)
}

type metricsService struct {
	assignments repository.AssignmentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewMetricsService builds the metrics aggregator. The cache is optional.
func NewMetricsService(assignments repository.AssignmentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) MetricsService {
	return &metricsService{
		assignments: assignments,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "metrics_service").Logger(),
	}
}

// Cached results live under a key suffixed with the student's generation counter.
// Invalidate bumps the counter, so a result computed before a write lands under a
// generation nobody reads again.
func metricsGenerationKey(studentID uint) string {
	return fmt.Sprintf("metrics:student:%d:generation", studentID)
}

func metricsCacheKey(studentID uint, generation int64) string {
	return fmt.Sprintf("metrics:student:%d:g%d", studentID, generation)
}

func (s *metricsService) GetMetrics(ctx context.Context, studentID uint) (dto.StudentMetricsResponse, error) {
	cacheKey := s.currentCacheKey(ctx, studentID)

	if cacheKey != "" {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentMetricsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("metrics cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read metrics cache")
		}
	}

	corrected, err := s.assignments.QueryByStudent(ctx, repository.AssignmentQuery{
		StudentID:     studentID,
		CorrectedOnly: true,
		Order:         repository.OrderByCorrection,
	})
	if err != nil {
		return dto.StudentMetricsResponse{}, fmt.Errorf("query corrected assignments: %w", err)
	}

	response := buildMetrics(studentID, corrected)

	if cacheKey != "" {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store metrics cache")
			}
		}
	}

	return response, nil
}

// currentCacheKey returns "" when caching is disabled or the generation cannot be read.
func (s *metricsService) currentCacheKey(ctx context.Context, studentID uint) string {
	if s.cache == nil {
		return ""
	}
	generation, err := s.cache.Get(ctx, metricsGenerationKey(studentID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to read metrics generation")
		return ""
	}
	return metricsCacheKey(studentID, generation)
}

func (s *metricsService) Invalidate(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, metricsGenerationKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate metrics cache")
	}
}

func buildMetrics(studentID uint, corrected []models.Assignment) dto.StudentMetricsResponse {
	response := dto.StudentMetricsResponse{
		StudentID:          studentID,
		AverageScoreByType: map[models.Modality]float64{},
	}

	sums := map[models.Modality]int{}
	counts := map[models.Modality]int{}
	total := 0
	for _, assignment := range corrected {
		if !assignment.Corrected {
			continue
		}
		modality := assignment.Activity.Modality
		sums[modality] += assignment.Score
		counts[modality]++
		total += assignment.Score
		response.TotalDone++
	}

	if response.TotalDone == 0 {
		return response
	}

	response.AverageScore = roundTwo(float64(total) / float64(response.TotalDone))
	for modality, count := range counts {
		response.AverageScoreByType[modality] = roundTwo(float64(sums[modality]) / float64(count))
	}

	return response
}

func roundTwo(value float64) float64 {
	return math.Round(value*100) / 100
}
