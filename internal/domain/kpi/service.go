package kpi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brainsait/rcm/internal/domain/claims"
	"github.com/brainsait/rcm/internal/domain/coding"
)

// JobSource is the slice of the coding repository the aggregator reads.
type JobSource interface {
	ListAll(ctx context.Context) ([]*coding.CodingJob, error)
}

// ClaimSource is the slice of the claims repository the aggregator reads.
type ClaimSource interface {
	ListAll(ctx context.Context) ([]*claims.Claim, error)
}

// Service computes the KPI summary on demand, with a short TTL cache so a
// dashboard polling the endpoint does not rescan the collections on every
// refresh.
type Service struct {
	jobs          JobSource
	claims        ClaimSource
	dnfbThreshold time.Duration
	ttl           time.Duration
	log           zerolog.Logger

	mu       sync.Mutex
	cached   *Metrics
	cachedAt time.Time
}

func NewService(jobs JobSource, cls ClaimSource, dnfbThreshold time.Duration, log zerolog.Logger) *Service {
	if dnfbThreshold <= 0 {
		dnfbThreshold = DefaultDNFBThreshold
	}
	return &Service{
		jobs:          jobs,
		claims:        cls,
		dnfbThreshold: dnfbThreshold,
		ttl:           30 * time.Second,
		log:           log,
	}
}

// Summary returns the current KPI report, recomputing when the cached one
// is older than the TTL.
func (s *Service) Summary(ctx context.Context) (*Metrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.cachedAt) < s.ttl {
		return s.cached, nil
	}

	jobs, err := s.jobs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	rows, err := s.claims.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	now := time.Now().UTC()
	m := &Metrics{
		ARDays:         ARDays(rows),
		DNFBRate:       DNFBRate(jobs, s.dnfbThreshold, now),
		CleanClaimRate: CleanClaimRate(rows),
		CaseMixIndex:   CaseMixIndex(jobs),
		AutomationRate: AutomationRate(jobs),
		JobCount:       len(jobs),
		ClaimCount:     len(rows),
		GeneratedAt:    now,
	}
	s.cached = m
	s.cachedAt = now
	s.log.Debug().Int("jobs", len(jobs)).Int("claims", len(rows)).Msg("kpi summary recomputed")
	return m, nil
}
