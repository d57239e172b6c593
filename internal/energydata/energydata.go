// Package energydata provides the energy data bounded context.
// This file defines the public interfaces exposed to other domains.
package energydata

import (
	"context"

	"enova_backend/internal/energydata/transport"
)

// EnergyDataService defines the public interface for yearly EMS lookups.
// Other domains should depend on this interface, not the concrete implementation.
type EnergyDataService interface {
	// GetEnergyPublicData returns the rows of year for organizationNumber.
	// An organization absent from a cached year yields an empty slice.
	GetEnergyPublicData(ctx context.Context, year int, organizationNumber string, forceRefresh bool) ([]transport.EmsCsv, error)

	// WarmUp refreshes the cache for the given years.
	WarmUp(ctx context.Context, years []int, forceRefresh bool) error

	// RecentYears returns the n most recent years, newest first.
	RecentYears(n int) []int
}
