// Package service provides the fetch-and-cache orchestration for the yearly
// EMS energy certificate file.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"enova_backend/internal/energydata/transport"
	"enova_backend/platform/cache"
	"enova_backend/platform/logger"
)

// SourceName prefixes every cache key written by this service.
const SourceName = "Enova"

const (
	currentYearExpiration = 24 * time.Hour
	pastYearExpiration    = 365 * 24 * time.Hour
)

// Fetcher downloads the yearly file from the upstream API.
type Fetcher interface {
	FetchFileLocation(ctx context.Context, year int) (string, error)
	FetchFile(ctx context.Context, fileURL string) (io.ReadCloser, error)
}

// Decoder turns a downloaded file into rows.
type Decoder interface {
	Decode(r io.Reader) ([]transport.EmsCsv, error)
}

// Service serves per-organization slices of a year's file, fetching and
// fanning the file out into the cache when the year is not cached yet.
//
// Calls are not serialized. Two callers missing the same year will both
// download it; the writes are idempotent per key.
type Service struct {
	store   cache.Store
	fetcher Fetcher
	decoder Decoder
	log     *logger.Logger
	now     func() time.Time
}

// New creates a new orchestration service.
func New(store cache.Store, fetcher Fetcher, decoder Decoder, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
		decoder: decoder,
		log:     log,
		now:     time.Now,
	}
}

// SetClock replaces the clock used for the expiration policy.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GetEnergyPublicData returns the rows of year whose organization number equals
// organizationNumber exactly. When the year is already cached the result comes
// from the organization's shard; a missing shard yields an empty result.
// forceRefresh skips the year flag and always downloads the file.
func (s *Service) GetEnergyPublicData(ctx context.Context, year int, organizationNumber string, forceRefresh bool) ([]transport.EmsCsv, error) {
	yearKey := YearCacheKey(year)
	orgKey := OrganizationCacheKey(organizationNumber, year)

	if !forceRefresh {
		cached, err := cache.GetValue[bool](ctx, s.store, yearKey)
		if err != nil {
			return nil, fmt.Errorf("read year flag: %w", err)
		}
		if cached {
			records, err := cache.GetValue[[]transport.EmsCsv](ctx, s.store, orgKey)
			if err != nil {
				return nil, fmt.Errorf("read organization shard: %w", err)
			}
			if records == nil {
				return []transport.EmsCsv{}, nil
			}
			return records, nil
		}
	}

	records, err := s.download(ctx, year)
	if err != nil {
		return nil, err
	}

	if err := s.CachePerOrganization(ctx, year, records); err != nil {
		return nil, err
	}

	return filterByOrganization(records, organizationNumber), nil
}

// CachePerOrganization marks year as cached and writes one shard per
// normalized organization number. The flag is written first; a failure
// part way leaves the year flagged with some shards missing, which readers
// see as empty results until the next forced refresh.
func (s *Service) CachePerOrganization(ctx context.Context, year int, records []transport.EmsCsv) error {
	opts := cache.EntryOptions{SlidingExpiration: s.expirationFor(year)}

	yearKey := YearCacheKey(year)
	if err := cache.SetValue(ctx, s.store, yearKey, true, opts); err != nil {
		s.log.CacheError("set", yearKey, err)
		return fmt.Errorf("write year flag: %w", err)
	}

	order, groups := groupByOrganization(records)
	for _, org := range order {
		key := organizationKey(org, year)
		if err := cache.SetValue(ctx, s.store, key, groups[org], opts); err != nil {
			s.log.CacheError("set", key, err)
			return fmt.Errorf("write organization shard: %w", err)
		}
	}

	s.log.Info("energy data cached",
		"year", year,
		"records", len(records),
		"shards", len(order),
		"expiration", opts.SlidingExpiration.String(),
	)
	return nil
}

// WarmUp refreshes the cache for every year with an empty organization filter.
// A failing year does not stop the remaining ones; all failures are returned joined.
func (s *Service) WarmUp(ctx context.Context, years []int, forceRefresh bool) error {
	var errs []error
	for _, year := range years {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.GetEnergyPublicData(ctx, year, "", forceRefresh); err != nil {
			s.log.Error("energy data warm-up failed", "year", year, "error", err)
			errs = append(errs, fmt.Errorf("year %d: %w", year, err))
			continue
		}
		s.log.Info("energy data warm-up done", "year", year, "forceRefresh", forceRefresh)
	}
	return errors.Join(errs...)
}

// RecentYears returns the n most recent years up to the current UTC year, newest first.
func (s *Service) RecentYears(n int) []int {
	return RecentYears(s.now(), n)
}

func (s *Service) download(ctx context.Context, year int) ([]transport.EmsCsv, error) {
	location, err := s.fetcher.FetchFileLocation(ctx, year)
	if err != nil {
		return nil, err
	}

	body, err := s.fetcher.FetchFile(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return s.decoder.Decode(body)
}

// expirationFor keeps the current year short-lived because its file is still
// being appended to; older files are final.
func (s *Service) expirationFor(year int) time.Duration {
	return ExpirationFor(year, s.now())
}

// ExpirationFor returns the sliding expiration for entries of year at time now.
func ExpirationFor(year int, now time.Time) time.Duration {
	if year == now.UTC().Year() {
		return currentYearExpiration
	}
	return pastYearExpiration
}

// RecentYears returns the n most recent years up to now's UTC year, newest first.
func RecentYears(now time.Time, n int) []int {
	current := now.UTC().Year()
	years := make([]int, 0, n)
	for i := 0; i < n; i++ {
		years = append(years, current-i)
	}
	return years
}

// YearCacheKey is the key of the flag marking a year as fanned out.
func YearCacheKey(year int) string {
	return SourceName + "-EmsCsv-" + strconv.Itoa(year) + "-IsCached"
}

// OrganizationCacheKey is the key of one organization's shard for year.
func OrganizationCacheKey(organizationNumber string, year int) string {
	return organizationKey(TrimAllWhitespace(organizationNumber), year)
}

func organizationKey(normalized string, year int) string {
	return SourceName + "-EmsCsv-" + normalized + "-" + strconv.Itoa(year)
}

// TrimAllWhitespace removes every Unicode white space rune from s.
func TrimAllWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func groupByOrganization(records []transport.EmsCsv) ([]string, map[string][]transport.EmsCsv) {
	var order []string
	groups := make(map[string][]transport.EmsCsv)
	for _, rec := range records {
		org := TrimAllWhitespace(rec.Organisasjonsnummer)
		if _, ok := groups[org]; !ok {
			order = append(order, org)
		}
		groups[org] = append(groups[org], rec)
	}
	return order, groups
}

func filterByOrganization(records []transport.EmsCsv, organizationNumber string) []transport.EmsCsv {
	out := make([]transport.EmsCsv, 0)
	for _, rec := range records {
		if rec.Organisasjonsnummer == organizationNumber {
			out = append(out, rec)
		}
	}
	return out
}
