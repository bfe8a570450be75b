package csvexport

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"boothscan/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Column selects one value of a record under a header label.
type Column struct {
	Label string
	Value func(r *domain.ExtractedRecord) string
}

// Filter decides whether a record is exported. A nil Filter keeps every record.
type Filter func(r *domain.ExtractedRecord) bool

func contactField(get func(c *domain.ContactInfo) string) func(r *domain.ExtractedRecord) string {
	return func(r *domain.ExtractedRecord) string {
		if r.Contact == nil {
			return ""
		}
		return get(r.Contact)
	}
}

// DefaultColumns is the column set used by the named export profiles.
var DefaultColumns = []Column{
	{Label: "Company Name", Value: func(r *domain.ExtractedRecord) string { return r.CompanyName }},
	{Label: "Booth", Value: func(r *domain.ExtractedRecord) string { return r.BoothLabel }},
	{Label: "Size", Value: func(r *domain.ExtractedRecord) string { return r.Size }},
	{Label: "Email", Value: contactField(func(c *domain.ContactInfo) string { return c.Email })},
	{Label: "Phone", Value: contactField(func(c *domain.ContactInfo) string { return c.Phone })},
	{Label: "Website", Value: contactField(func(c *domain.ContactInfo) string { return c.Website })},
	{Label: "Address", Value: contactField(func(c *domain.ContactInfo) string { return c.Address })},
	{Label: "Place ID", Value: contactField(func(c *domain.ContactInfo) string { return c.PlaceID })},
}

// Writer writes rows with every field double-quoted and rows separated by a
// single line feed. encoding/csv only quotes fields that need it.
type Writer struct {
	w    *bufio.Writer
	rows int
	err  error
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one row.
func (w *Writer) Write(fields []string) error {
	if w.err != nil {
		return w.err
	}
	if w.rows > 0 {
		w.put("\n")
	}
	for i, f := range fields {
		if i > 0 {
			w.put(",")
		}
		w.put(`"`)
		w.put(strings.ReplaceAll(f, `"`, `""`))
		w.put(`"`)
	}
	w.rows++
	return w.err
}

func (w *Writer) put(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.WriteString(s)
}

// WriteHeader writes the labels of columns as the header row.
func (w *Writer) WriteHeader(columns []Column) error {
	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = c.Label
	}
	return w.Write(labels)
}

// WriteRecords writes the records accepted by filter and returns how many were written.
func (w *Writer) WriteRecords(records []domain.ExtractedRecord, columns []Column, filter Filter) (int, error) {
	n := 0
	for i := range records {
		rec := &records[i]
		if filter != nil && !filter(rec) {
			continue
		}
		if err := w.Write(recordToRow(rec, columns)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Flush flushes the underlying buffer.
func (w *Writer) Flush() {
	if w.err == nil {
		w.err = w.w.Flush()
	}
}

// Error returns the first write or flush error.
func (w *Writer) Error() error {
	return w.err
}

func recordToRow(rec *domain.ExtractedRecord, columns []Column) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		if c.Value != nil {
			row[i] = c.Value(rec)
		}
	}
	return row
}

// ToCSV serializes the records accepted by filter under the given columns.
func ToCSV(records []domain.ExtractedRecord, columns []Column, filter Filter) string {
	out, _ := toCSV(records, columns, filter)
	return out
}

func toCSV(records []domain.ExtractedRecord, columns []Column, filter Filter) (string, int) {
	var sb strings.Builder
	w := NewWriter(&sb)
	_ = w.WriteHeader(columns)
	n, _ := w.WriteRecords(records, columns, filter)
	w.Flush()
	return sb.String(), n
}

// HasEmail is the filter of the enriched export profile.
func HasEmail(r *domain.ExtractedRecord) bool {
	return r.HasEmail()
}

// ProfileFilter returns the record filter of a named export profile.
func ProfileFilter(profile domain.ExportProfile) (Filter, error) {
	switch profile {
	case domain.ExportProfileEnriched:
		return HasEmail, nil
	case domain.ExportProfileAll:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProfile, profile)
	}
}

// Export serializes records with the default columns under a named profile.
// It returns domain.ErrNothingToExport instead of a header-only document.
func Export(records []domain.ExtractedRecord, profile domain.ExportProfile) (string, error) {
	filter, err := ProfileFilter(profile)
	if err != nil {
		return "", err
	}
	out, n := toCSV(records, DefaultColumns, filter)
	if n == 0 {
		return "", domain.ErrNothingToExport
	}
	return out, nil
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// DefaultBaseName is used when the source file name is empty.
const DefaultBaseName = "booth_data"

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns the export file name for a source document.
// Format: {source_stem}_{profile}.{format}
func BuildFilename(sourceFileName string, profile domain.ExportProfile, format domain.ExportFormat) string {
	stem := strings.TrimSuffix(sourceFileName, filepath.Ext(sourceFileName))
	base := SanitizeFilename(stem)
	if base == "" {
		base = DefaultBaseName
	}
	return fmt.Sprintf("%s_%s.%s", base, profile, format)
}
