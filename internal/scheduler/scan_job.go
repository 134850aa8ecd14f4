package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/domain"
)

// RegionScanner runs a screening pass that bypasses the scan cache
type RegionScanner interface {
	ScanFresh(region domain.Region) ([]domain.Candidate, error)
}

// ScanJob pre-warms the scan cache for one region so the first interactive
// request of the day is served instantly
type ScanJob struct {
	scanner RegionScanner
	region  domain.Region
	log     zerolog.Logger
}

// NewScanJob creates a daily scan job for a region
func NewScanJob(scanner RegionScanner, region domain.Region, log zerolog.Logger) *ScanJob {
	return &ScanJob{
		scanner: scanner,
		region:  region,
		log:     log.With().Str("job", "region_scan").Str("region", string(region)).Logger(),
	}
}

// Name implements Job
func (j *ScanJob) Name() string {
	return fmt.Sprintf("region_scan_%s", j.region)
}

// Run implements Job
func (j *ScanJob) Run() error {
	picks, err := j.scanner.ScanFresh(j.region)
	if err != nil {
		return fmt.Errorf("scan %s: %w", j.region, err)
	}

	j.log.Info().Int("picks", len(picks)).Msg("Daily scan complete")
	return nil
}
