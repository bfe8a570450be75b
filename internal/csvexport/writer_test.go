package csvexport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"boothscan/internal/domain"
)

func sampleRecords() []domain.ExtractedRecord {
	return []domain.ExtractedRecord{
		{
			CompanyName: "Acme, Inc.",
			BoothLabel:  "A12",
			Size:        "9 sq.m",
			Contact: &domain.ContactInfo{
				Email:   "sales@acme.example",
				Phone:   "+1 555 0100",
				Website: "https://acme.example",
				Address: "1 Main St\nSpringfield",
				PlaceID: "ChIJ123",
			},
		},
		{CompanyName: `Say "hi"`, BoothLabel: "B3"},
		{CompanyName: "Searched Ltd", Contact: &domain.ContactInfo{Phone: "42"}},
	}
}

func TestWriter_QuotesEveryField(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write([]string{"plain", "", "x"}))
	require.NoError(t, w.Write([]string{"second"}))
	w.Flush()
	require.NoError(t, w.Error())

	assert.Equal(t, "\"plain\",\"\",\"x\"\n\"second\"", buf.String())
}

func TestToCSV_EscapesQuotesAndCommas(t *testing.T) {
	columns := DefaultColumns[:1]

	out := ToCSV(sampleRecords()[:2], columns, nil)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"Company Name"`, lines[0])
	assert.Equal(t, `"Acme, Inc."`, lines[1])
	assert.Equal(t, `"Say ""hi"""`, lines[2])
}

func TestToCSV_RoundTripsThroughStandardReader(t *testing.T) {
	records := sampleRecords()

	out := ToCSV(records, DefaultColumns, nil)

	r := csv.NewReader(strings.NewReader(out))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Company Name", "Booth", "Size", "Email", "Phone", "Website", "Address", "Place ID"}, rows[0])
	assert.Equal(t, "Acme, Inc.", rows[1][0])
	assert.Equal(t, "1 Main St\nSpringfield", rows[1][6])
	assert.Equal(t, `Say "hi"`, rows[2][0])
	assert.Equal(t, "Searched Ltd", rows[3][0])
	assert.Equal(t, "42", rows[3][4])
}

func TestToCSV_AbsentValuesAreEmpty(t *testing.T) {
	out := ToCSV([]domain.ExtractedRecord{{CompanyName: "Bare"}}, DefaultColumns, nil)

	assert.NotContains(t, out, "null")
	assert.NotContains(t, out, "undefined")
	lines := strings.Split(out, "\n")
	assert.Equal(t, `"Bare","","","","","","",""`, lines[1])
}

func TestToCSV_NoTrailingNewline(t *testing.T) {
	out := ToCSV(sampleRecords(), DefaultColumns, nil)

	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestToCSV_HeaderOnlyWhenNothingMatches(t *testing.T) {
	out := ToCSV(nil, DefaultColumns[:2], nil)

	assert.Equal(t, `"Company Name","Booth"`, out)
}

func TestToCSV_CustomColumnsAndFilter(t *testing.T) {
	columns := []Column{
		{Label: "Booth", Value: func(r *domain.ExtractedRecord) string { return r.BoothLabel }},
		{Label: "Name", Value: func(r *domain.ExtractedRecord) string { return r.CompanyName }},
		{Label: "Nil Selector"},
	}
	onlyB := func(r *domain.ExtractedRecord) bool { return strings.HasPrefix(r.BoothLabel, "B") }

	out := ToCSV(sampleRecords(), columns, onlyB)

	assert.Equal(t, "\"Booth\",\"Name\",\"Nil Selector\"\n\"B3\",\"Say \"\"hi\"\"\",\"\"", out)
}

func TestExport_EnrichedProfile(t *testing.T) {
	out, err := Export(sampleRecords(), domain.ExportProfileEnriched)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme, Inc.", rows[1][0])
}

func TestExport_AllProfile(t *testing.T) {
	out, err := Export(sampleRecords(), domain.ExportProfileAll)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestExport_EnrichedNothingToExport(t *testing.T) {
	records := []domain.ExtractedRecord{
		{CompanyName: "Bare"},
		{CompanyName: "NoEmail", Contact: &domain.ContactInfo{Phone: "1"}},
	}

	out, err := Export(records, domain.ExportProfileEnriched)

	assert.Empty(t, out)
	assert.ErrorIs(t, err, domain.ErrNothingToExport)
}

func TestExport_AllWithNoRecords(t *testing.T) {
	_, err := Export(nil, domain.ExportProfileAll)

	assert.ErrorIs(t, err, domain.ErrNothingToExport)
}

func TestExport_UnknownProfile(t *testing.T) {
	_, err := Export(sampleRecords(), domain.ExportProfile("vip"))

	assert.True(t, errors.Is(err, domain.ErrUnknownProfile))
}

func TestExportXLSX(t *testing.T) {
	data, err := ExportXLSX(sampleRecords(), domain.ExportProfileEnriched)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Company Name", rows[0][0])
	assert.Equal(t, "Acme, Inc.", rows[1][0])
	assert.Equal(t, "sales@acme.example", rows[1][3])
}

func TestExportXLSX_NothingToExport(t *testing.T) {
	_, err := ExportXLSX([]domain.ExtractedRecord{{CompanyName: "Bare"}}, domain.ExportProfileEnriched)

	assert.ErrorIs(t, err, domain.ErrNothingToExport)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hall A Floorplan", "Hall_A_Floorplan"},
		{"expo/2025 (final)", "expo_2025_final"},
		{"___leading___trailing___", "leading_trailing"},
		{"", ""},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SanitizeFilename(tt.input), "input: %q", tt.input)
	}
}

func TestBuildFilename(t *testing.T) {
	assert.Equal(t, "hall_a_enriched.csv", BuildFilename("hall a.pdf", domain.ExportProfileEnriched, domain.ExportFormatCSV))
	assert.Equal(t, "plan_all.xlsx", BuildFilename("plan.pdf", domain.ExportProfileAll, domain.ExportFormatXLSX))
	assert.Equal(t, "booth_data_all.csv", BuildFilename("", domain.ExportProfileAll, domain.ExportFormatCSV))
	assert.Equal(t, "booth_data_enriched.csv", BuildFilename("???.pdf", domain.ExportProfileEnriched, domain.ExportFormatCSV))
}
