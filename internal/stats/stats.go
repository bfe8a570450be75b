// Package stats derives enrichment coverage counts from normalized records.
package stats

import (
	"math"

	"boothscan/internal/domain"
)

// Compute counts records and their enrichment coverage.
// A record is enriched when its contact is present, whatever its fields hold.
func Compute(records []domain.ExtractedRecord) domain.DerivedStats {
	s := domain.DerivedStats{Total: len(records)}
	for i := range records {
		c := records[i].Contact
		if c == nil {
			continue
		}
		s.EnrichedCount++
		if c.Email != "" {
			s.WithEmail++
		}
		if c.Phone != "" {
			s.WithPhone++
		}
		if c.Website != "" {
			s.WithWebsite++
		}
		if c.Address != "" {
			s.WithAddress++
		}
	}
	return s
}

// ComputeAll aggregates stats over the records of several results.
func ComputeAll(results []domain.ExtractionResult) domain.DerivedStats {
	var total domain.DerivedStats
	for i := range results {
		s := Compute(results[i].Records)
		total.Total += s.Total
		total.EnrichedCount += s.EnrichedCount
		total.WithEmail += s.WithEmail
		total.WithPhone += s.WithPhone
		total.WithWebsite += s.WithWebsite
		total.WithAddress += s.WithAddress
	}
	return total
}

// Percent returns round(part/total*100), or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Percentages is the rendered view of DerivedStats.
type Percentages struct {
	Enriched    int `json:"enriched"`
	WithEmail   int `json:"with_email"`
	WithPhone   int `json:"with_phone"`
	WithWebsite int `json:"with_website"`
	WithAddress int `json:"with_address"`
}

// PercentagesOf derives display percentages relative to the total record count.
func PercentagesOf(s domain.DerivedStats) Percentages {
	return Percentages{
		Enriched:    Percent(s.EnrichedCount, s.Total),
		WithEmail:   Percent(s.WithEmail, s.Total),
		WithPhone:   Percent(s.WithPhone, s.Total),
		WithWebsite: Percent(s.WithWebsite, s.Total),
		WithAddress: Percent(s.WithAddress, s.Total),
	}
}
