package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/stillingsradar/ingest-api/internal/dto"
	"github.com/stillingsradar/ingest-api/internal/entity"
	"github.com/stillingsradar/ingest-api/internal/normalize"
	"github.com/stillingsradar/ingest-api/internal/repository"
)

// CompaniesService exposes read operations for the company catalogue and the
// administrative CSV bulk import.
type CompaniesService struct {
	repo     repository.CompaniesRepository
	resolver *Resolver
}

// NewCompaniesService creates a new instance of CompaniesService.
func NewCompaniesService(repo repository.CompaniesRepository, resolver *Resolver) *CompaniesService {
	return &CompaniesService{repo: repo, resolver: resolver}
}

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// ImportSummary reports the outcome of a bulk import after in-batch
// deduplication: created and matched count canonical records, failed counts
// records the resolver rejected, skipped counts raw rows dropped for having
// no usable identifier. Merged duplicates appear only in total.
type ImportSummary struct {
	Created int `json:"created"`
	Matched int `json:"matched"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// ListCompanies returns companies respecting pagination defaults.
func (s *CompaniesService) ListCompanies(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	return s.repo.List(ctx, filter)
}

// ImportCompaniesCSV ingests company rows from a CSV reader. Rows are
// deduplicated within the batch before resolution, so a file listing the same
// company under several spellings lands as one row in the store. A record the
// resolver rejects is counted and skipped, never aborting the batch.
func (s *CompaniesService) ImportCompaniesCSV(ctx context.Context, r io.Reader) (ImportSummary, error) {
	records, err := readCompanyCSV(r)
	if err != nil {
		return ImportSummary{}, err
	}

	summary := ImportSummary{Total: len(records)}
	for _, record := range records {
		if len(companyIdentifiers(record)) == 0 {
			summary.Skipped++
		}
	}

	for _, record := range DedupeCompanyRecords(records) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := s.importCompanyRecord(ctx, record, &summary); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (s *CompaniesService) importCompanyRecord(ctx context.Context, record CompanyRecord, summary *ImportSummary) error {
	candidate, err := BuildCompanyCandidate(record.Name, record.Domain, record.OrgNr)
	if err != nil {
		summary.Failed++
		return nil
	}
	res, err := s.resolver.ResolveCompany(ctx, candidate)
	if err != nil {
		summary.Failed++
		return nil
	}
	if res.Created {
		summary.Created++
	} else {
		summary.Matched++
	}

	fields := map[string]any{
		"industry":          strings.TrimSpace(record.Industry),
		"company_size":      strings.TrimSpace(record.CompanySize),
		"location":          strings.TrimSpace(record.Location),
		"sector":            strings.TrimSpace(record.Sector),
		"proff_url":         strings.TrimSpace(record.ProffURL),
		"profit_before_tax": strings.TrimSpace(record.ProfitBeforeTax),
		"turnover":          strings.TrimSpace(record.Turnover),
	}
	if _, err := s.resolver.MergeCompanyFields(ctx, res.Company, fields); err != nil {
		return fmt.Errorf("merge imported fields for %q: %w", res.Company.CompanyKey, err)
	}
	return nil
}

// name is the only mandatory column; the rest are read when present.
var requiredCSVHeaders = []string{"name"}

func readCompanyCSV(r io.Reader) ([]CompanyRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, CSVValidationError{Message: "csv file is empty"}
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	indexMap, valErr := buildHeaderIndex(header)
	if valErr != nil {
		return nil, valErr
	}

	var records []CompanyRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		records = append(records, CompanyRecord{
			Name:            csvField(row, indexMap, "name"),
			OrgNr:           normalize.OrgNr(csvField(row, indexMap, "orgnr")),
			Domain:          csvField(row, indexMap, "domain"),
			Industry:        csvField(row, indexMap, "industry"),
			CompanySize:     csvField(row, indexMap, "company_size"),
			Location:        csvField(row, indexMap, "location"),
			Sector:          csvField(row, indexMap, "sector"),
			ProffURL:        csvField(row, indexMap, "proff_url"),
			ProfitBeforeTax: csvField(row, indexMap, "profit_before_tax"),
			Turnover:        csvField(row, indexMap, "turnover"),
		})
	}
	return records, nil
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

func csvField(row []string, index map[string]int, name string) string {
	idx, ok := index[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
