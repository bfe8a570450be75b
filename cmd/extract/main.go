// Command extract submits local exhibitor floor plans to the extraction service
// and writes one export file per result.
// Usage: go run ./cmd/extract [-out dir] [-profile enriched|all|both] [-format csv|xlsx] file.pdf...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"boothscan/internal/config"
	"boothscan/internal/csvexport"
	"boothscan/internal/domain"
	"boothscan/internal/extractor"
	"boothscan/internal/intake"
	"boothscan/internal/service"
	"boothscan/internal/stats"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		outDir  = flag.String("out", ".", "directory to write export files to")
		profile = flag.String("profile", "both", "export profile: enriched, all, or both")
		format  = flag.String("format", "csv", "export format: csv or xlsx")
	)
	flag.Parse()
	if flag.NArg() == 0 {
		return errors.New("usage: extract [-out dir] [-profile enriched|all|both] [-format csv|xlsx] file.pdf...")
	}

	profiles, err := parseProfiles(*profile)
	if err != nil {
		return err
	}
	exportFormat := domain.ExportFormat(*format)
	if exportFormat != domain.ExportFormatCSV && exportFormat != domain.ExportFormatXLSX {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFormat, *format)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	batch := intake.NewBatch(intake.Options{
		MaxSizeBytes: cfg.Intake.MaxFileSizeBytes,
		AcceptedType: cfg.Intake.AcceptedType,
		SniffContent: cfg.Intake.SniffContent,
	})
	candidates, err := localCandidates(flag.Args())
	if err != nil {
		return err
	}
	added := batch.Add(candidates)
	for _, r := range added.Rejected {
		log.Printf("extract: skipping %s: %v", r.FileName, r.Err)
	}

	pipeline := service.NewPipeline(extractor.NewClient(&cfg.Extractor), nil, service.PipelineConfig{
		Timeout: cfg.Pipeline.Timeout(),
	})
	defer pipeline.Close()

	ctx := context.Background()
	sub, err := pipeline.Submit(ctx, batch)
	if err != nil {
		return fmt.Errorf("submitting batch: %w", err)
	}
	log.Printf("extract: submitted %d file(s) to %s", len(added.Accepted), cfg.Extractor.Endpoint)

	results, err := sub.Wait(ctx)
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for i := range results {
		res := &results[i]
		s := stats.Compute(res.Records)
		pct := stats.PercentagesOf(s)
		log.Printf("extract: %s: %d record(s) (%d reported, %d dropped), enriched %d%%, email %d%%, phone %d%%, website %d%%",
			res.SourceFileName, s.Total, res.TotalRecordsReported, res.DroppedRecords,
			pct.Enriched, pct.WithEmail, pct.WithPhone, pct.WithWebsite)

		for _, p := range profiles {
			if err := writeExport(*outDir, res, p, exportFormat); err != nil {
				if errors.Is(err, domain.ErrNothingToExport) {
					log.Printf("extract: %s: no %s records to export", res.SourceFileName, p)
					continue
				}
				return err
			}
		}
	}

	total := stats.ComputeAll(results)
	log.Printf("extract: done, %d result(s), %d record(s), %d enriched", len(results), total.Total, total.EnrichedCount)
	return nil
}

func parseProfiles(v string) ([]domain.ExportProfile, error) {
	switch strings.ToLower(v) {
	case "both":
		return []domain.ExportProfile{domain.ExportProfileEnriched, domain.ExportProfileAll}, nil
	case string(domain.ExportProfileEnriched):
		return []domain.ExportProfile{domain.ExportProfileEnriched}, nil
	case string(domain.ExportProfileAll):
		return []domain.ExportProfile{domain.ExportProfileAll}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProfile, v)
	}
}

func localCandidates(paths []string) ([]intake.Candidate, error) {
	candidates := make([]intake.Candidate, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		candidates = append(candidates, intake.Candidate{
			Name:         filepath.Base(p),
			Size:         info.Size(),
			DeclaredType: mime.TypeByExtension(strings.ToLower(filepath.Ext(p))),
			Content:      domain.FileContent(p),
		})
	}
	return candidates, nil
}

func writeExport(dir string, res *domain.ExtractionResult, profile domain.ExportProfile, format domain.ExportFormat) error {
	var data []byte
	switch format {
	case domain.ExportFormatXLSX:
		out, err := csvexport.ExportXLSX(res.Records, profile)
		if err != nil {
			return err
		}
		data = out
	default:
		out, err := csvexport.Export(res.Records, profile)
		if err != nil {
			return err
		}
		data = append(append([]byte{}, csvexport.BOM...), out...)
	}

	path := filepath.Join(dir, csvexport.BuildFilename(res.SourceFileName, profile, format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Printf("extract: wrote %s", path)
	return nil
}
