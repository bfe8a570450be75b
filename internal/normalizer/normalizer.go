// Package normalizer decodes extraction service payloads into canonical records.
//
// The service has shipped several response shapes over time. Enrichment may be
// nested under "places_data", flattened onto the record, or missing entirely.
// Normalize accepts all of them; a nested enrichment object always wins over
// flattened sibling fields.
package normalizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"boothscan/internal/domain"
)

var (
	recordListKeys  = []string{"booths", "records"}
	totalCountKeys  = []string{"total_booths", "total_records"}
	companyNameKeys = []string{"company_name", "company"}
	boothLabelKeys  = []string{"booth", "booth_number"}
	nestedKeys      = []string{"places_data", "enrichment"}
	flattenedKeys   = []string{"email", "phone", "website", "address", "place_id"}
)

// placeholderNames are company values the extractor emits for empty cells.
var placeholderNames = map[string]struct{}{
	"none": {},
	"null": {},
	"n/a":  {},
}

// Normalize converts a raw response body into one ExtractionResult per entry of
// its results list. It fails with domain.ErrMalformedResponse when the body is
// not JSON or has no results array.
func Normalize(raw []byte) ([]domain.ExtractionResult, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: body is not valid JSON", domain.ErrMalformedResponse)
	}
	results := gjson.GetBytes(raw, "results")
	if !results.IsArray() {
		return nil, fmt.Errorf("%w: missing results array", domain.ErrMalformedResponse)
	}

	entries := results.Array()
	out := make([]domain.ExtractionResult, 0, len(entries))
	for i, entry := range entries {
		if !entry.IsObject() {
			return nil, fmt.Errorf("%w: result %d is not an object", domain.ErrMalformedResponse, i)
		}
		out = append(out, normalizeResult(entry))
	}
	return out, nil
}

// Message returns the optional top-level message of a response body.
func Message(raw []byte) string {
	return stringValue(gjson.GetBytes(raw, "message"))
}

func normalizeResult(entry gjson.Result) domain.ExtractionResult {
	res := domain.ExtractionResult{
		SourceFileName:   stringValue(entry.Get("filename")),
		ExtractionMethod: stringValue(entry.Get("extraction_method")),
		Records:          []domain.ExtractedRecord{},
	}
	if total := firstOf(entry, totalCountKeys...); total.Exists() {
		res.TotalRecordsReported = int(total.Int())
	}
	if v := entry.Get("processing_time"); isNumeric(v) {
		f := v.Float()
		res.ProcessingTimeSeconds = &f
	}
	if v := entry.Get("enrichment_time"); isNumeric(v) {
		f := v.Float()
		res.EnrichmentTimeSeconds = &f
	}
	if v := entry.Get("places_api_calls"); isNumeric(v) {
		n := int(v.Int())
		res.ExternalAPICallCount = &n
	}

	list := firstOf(entry, recordListKeys...)
	if !list.IsArray() {
		return res
	}
	for _, item := range list.Array() {
		rec, ok := normalizeRecord(item)
		if !ok {
			res.DroppedRecords++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

func normalizeRecord(item gjson.Result) (domain.ExtractedRecord, bool) {
	if !item.IsObject() {
		return domain.ExtractedRecord{}, false
	}
	name := stringValue(firstOf(item, companyNameKeys...))
	if name == "" {
		return domain.ExtractedRecord{}, false
	}
	if _, placeholder := placeholderNames[strings.ToLower(name)]; placeholder {
		return domain.ExtractedRecord{}, false
	}

	return domain.ExtractedRecord{
		CompanyName: name,
		BoothLabel:  stringValue(firstOf(item, boothLabelKeys...)),
		Size:        stringValue(item.Get("size")),
		Contact:     extractContact(item),
	}, true
}

// extractContact applies the precedence nested > flattened > absent.
func extractContact(item gjson.Result) *domain.ContactInfo {
	if nested := firstOf(item, nestedKeys...); nested.IsObject() {
		return &domain.ContactInfo{
			Email:   stringValue(nested.Get("email")),
			Phone:   stringValue(nested.Get("phone")),
			Website: stringValue(nested.Get("website")),
			Address: stringValue(nested.Get("address")),
			PlaceID: stringValue(nested.Get("place_id")),
			Name:    stringValue(nested.Get("name")),
		}
	}

	flattened := false
	for _, k := range flattenedKeys {
		if present(item.Get(k)) {
			flattened = true
			break
		}
	}
	if !flattened {
		return nil
	}
	return &domain.ContactInfo{
		Email:   stringValue(item.Get("email")),
		Phone:   stringValue(item.Get("phone")),
		Website: stringValue(item.Get("website")),
		Address: stringValue(item.Get("address")),
		PlaceID: stringValue(item.Get("place_id")),
	}
}

// firstOf returns the first key of obj holding a non-null value.
func firstOf(obj gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := obj.Get(k); present(v) {
			return v
		}
	}
	return gjson.Result{}
}

func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

func isNumeric(v gjson.Result) bool {
	if v.Type == gjson.Number {
		return true
	}
	if v.Type != gjson.String {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
	return err == nil
}

// stringValue coerces scalars to trimmed strings; objects, arrays and null yield "".
func stringValue(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str)
	case gjson.Number:
		return v.String()
	default:
		return ""
	}
}
