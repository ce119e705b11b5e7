package usecase

import (
	"context"
	"errors"
	"time"

	"FactPull/internal/domain/models"
	domrepo "FactPull/internal/domain/repository"
	"FactPull/internal/services/xbrl"
	xhttp "FactPull/pkg/http"
	applogger "FactPull/pkg/logger"
)

const archiveTimeout = 10 * time.Second

// SeriesService resolves a ticker, loads its facts document through the
// cached fact source, and runs the extraction pipeline for a metric. The
// pipeline itself is pure; everything fallible happens before it.
type SeriesService struct {
	directory domrepo.TickerDirectory
	source    domrepo.FactSource
	metrics   domrepo.Metrics
	archive   domrepo.SeriesArchive // optional
	logger    *applogger.Logger
}

func NewSeriesService(
	directory domrepo.TickerDirectory,
	source domrepo.FactSource,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
) *SeriesService {
	return &SeriesService{
		directory: directory,
		source:    source,
		metrics:   metrics,
		logger:    logger,
	}
}

// SetArchive enables best-effort archiving of extracted series.
func (s *SeriesService) SetArchive(a domrepo.SeriesArchive) { s.archive = a }

// Quarterly extracts the quarterly series for one metric. An empty series is
// a valid result, not an error.
func (s *SeriesService) Quarterly(ctx context.Context, ticker string, m models.Metric) ([]models.PeriodPoint, error) {
	doc, err := s.loadFacts(ctx, ticker)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	points := xbrl.Extract(doc, m)
	s.metrics.RecordExtraction(m.Name, time.Since(start).Seconds())

	s.archiveAsync(ticker, m.Name, points)
	return points, nil
}

// TTM extracts the trailing-twelve-month series for one metric. Fewer than
// four quarters yields an empty series.
func (s *SeriesService) TTM(ctx context.Context, ticker string, m models.Metric) ([]models.PeriodPoint, error) {
	doc, err := s.loadFacts(ctx, ticker)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	points := xbrl.ExtractTTM(doc, m)
	s.metrics.RecordExtraction(m.Name+"_ttm", time.Since(start).Seconds())

	return points, nil
}

// Profile returns the company identity for a ticker.
func (s *SeriesService) Profile(ctx context.Context, ticker string) (models.CompanyProfile, error) {
	entry, err := s.resolve(ctx, ticker)
	if err != nil {
		return models.CompanyProfile{}, err
	}
	doc, err := s.source.CompanyFacts(ctx, entry.CIK)
	if err != nil {
		return models.CompanyProfile{}, s.mapFetchErr(ticker, err)
	}
	return models.CompanyProfile{
		Ticker:     entry.Ticker,
		CIK:        doc.CIK,
		EntityName: doc.EntityName,
	}, nil
}

// Resolve exposes ticker resolution for callers that only need the CIK.
func (s *SeriesService) Resolve(ctx context.Context, ticker string) (domrepo.TickerEntry, error) {
	return s.resolve(ctx, ticker)
}

func (s *SeriesService) loadFacts(ctx context.Context, ticker string) (*models.CompanyFacts, error) {
	entry, err := s.resolve(ctx, ticker)
	if err != nil {
		return nil, err
	}
	doc, err := s.source.CompanyFacts(ctx, entry.CIK)
	if err != nil {
		return nil, s.mapFetchErr(ticker, err)
	}
	return doc, nil
}

func (s *SeriesService) resolve(ctx context.Context, ticker string) (domrepo.TickerEntry, error) {
	entry, err := s.directory.Resolve(ctx, ticker)
	if err != nil {
		if errors.Is(err, domrepo.ErrNotFound) {
			return domrepo.TickerEntry{}, xhttp.NotFoundErrorf("unknown ticker %q", ticker).WithError(err)
		}
		s.metrics.RecordError("directory")
		return domrepo.TickerEntry{}, xhttp.InternalError("ticker directory unavailable").WithError(err)
	}
	return entry, nil
}

func (s *SeriesService) mapFetchErr(ticker string, err error) error {
	if errors.Is(err, domrepo.ErrNotFound) {
		return xhttp.NotFoundErrorf("no filings for ticker %q", ticker).WithError(err)
	}
	s.metrics.RecordError("fetch")
	return xhttp.InternalError("upstream fetch failed").WithError(err)
}

// archiveAsync writes points to the archive without blocking or failing the
// request.
func (s *SeriesService) archiveAsync(ticker, metric string, points []models.PeriodPoint) {
	if s.archive == nil || len(points) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := s.archive.Append(ctx, ticker, metric, points); err != nil {
			s.metrics.RecordError("archive")
			s.logger.Warn("series archive append failed",
				applogger.String("ticker", ticker),
				applogger.String("metric", metric),
				applogger.Error(err))
		}
	}()
}
