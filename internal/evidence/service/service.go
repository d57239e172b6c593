// Package service provides evidence harvesting for published energy certificates.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	energytransport "enova_backend/internal/energydata/transport"
	"enova_backend/internal/entityregistry"
	"enova_backend/internal/evidence/transport"
	"enova_backend/platform/apperr"
	"enova_backend/platform/config"
	"enova_backend/platform/logger"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
)

// YearsCovered is how many of the most recent years an evidence response spans.
const YearsCovered = 5

// EnergyDataReader reads one organization's certificates for a year.
type EnergyDataReader interface {
	GetEnergyPublicData(ctx context.Context, year int, organizationNumber string, forceRefresh bool) ([]energytransport.EmsCsv, error)
}

// EntityLookup resolves a legal entity by organization number.
// A nil entity with a nil error means the entity does not exist.
type EntityLookup interface {
	Get(ctx context.Context, organizationNumber string) (*entityregistry.Entity, error)
}

// Service builds evidence values for the OffentligEnergiData code.
type Service struct {
	energy   EnergyDataReader
	entities EntityLookup
	breaker  *gobreaker.CircuitBreaker[[]energytransport.EmsCsv]
	log      *logger.Logger
	now      func() time.Time
}

// New creates the evidence service. Calls to the energy data reader go
// through a circuit breaker that only counts transient failures.
func New(energy EnergyDataReader, entities EntityLookup, cfg config.CircuitBreakerConfig, log *logger.Logger) *Service {
	threshold := cfg.GetCircuitBreakerFailuresBeforeTripping()
	if threshold == 0 {
		threshold = 1
	}

	breaker := gobreaker.NewCircuitBreaker[[]energytransport.EmsCsv](gobreaker.Settings{
		Name:    "enova",
		Timeout: cfg.GetCircuitBreakerOpenTimeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Service{
		energy:   energy,
		entities: entities,
		breaker:  breaker,
		log:      log,
		now:      time.Now,
	}
}

// breakerSuccess decides what the breaker counts as a failure: transient
// upstream errors only. Permanent errors such as a missing year, and lookups
// abandoned because a sibling year already failed, leave it closed.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return !apperr.IsTransient(err)
}

// SetClock replaces the clock used to pick years and stamp values.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// PublicEnergyData returns the evidence values for organizationNumber: one
// "default" value holding the certificates per year, newest year first,
// with years that have no certificates left out.
func (s *Service) PublicEnergyData(ctx context.Context, organizationNumber string) ([]transport.EvidenceValue, error) {
	entity, err := s.entities.Get(ctx, organizationNumber)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, apperr.NotFound(fmt.Sprintf("legal entity (%s) not found", organizationNumber))
	}

	now := s.now()
	years := recentYears(now, YearsCovered)
	results := make([][]energytransport.EmsCsv, len(years))

	g, gctx := errgroup.WithContext(ctx)
	for i, year := range years {
		g.Go(func() error {
			records, err := s.lookup(gctx, year, entity.Organisasjonsnummer)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.WithContext(ctx).Error("energy data lookup failed", "organizationNumber", organizationNumber, "error", err)
		return nil, err
	}

	data := make([]transport.YearlyEnergyData, 0, len(years))
	for i, year := range years {
		if len(results[i]) == 0 {
			continue
		}
		data = append(data, transport.YearlyEnergyData{
			Year:    year,
			Records: energytransport.ToResponseModels(results[i]),
		})
	}

	return []transport.EvidenceValue{{
		EvidenceValueName: transport.DefaultValueName,
		ValueType:         transport.ValueTypeJSONSchema,
		Value:             data,
		Source:            transport.SourceName,
		Timestamp:         now.UTC(),
	}}, nil
}

func (s *Service) lookup(ctx context.Context, year int, organizationNumber string) ([]energytransport.EmsCsv, error) {
	records, err := s.breaker.Execute(func() ([]energytransport.EmsCsv, error) {
		return s.energy.GetEnergyPublicData(ctx, year, organizationNumber, false)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, apperr.UpstreamUnavailable("energy data source is temporarily unavailable", err)
	}
	return records, err
}

// recentYears lists the n most recent years, newest first.
func recentYears(now time.Time, n int) []int {
	current := now.UTC().Year()
	years := make([]int, n)
	for i := range years {
		years[i] = current - i
	}
	return years
}
