package domain

// PipelineState is the lifecycle state of a submission pipeline.
type PipelineState string

const (
	PipelineStateIdle       PipelineState = "idle"
	PipelineStateSubmitting PipelineState = "submitting"
	PipelineStateSucceeded  PipelineState = "succeeded"
	PipelineStateFailed     PipelineState = "failed"
)

// IsTerminal reports whether the state is a finished submission.
func (s PipelineState) IsTerminal() bool {
	return s == PipelineStateSucceeded || s == PipelineStateFailed
}

// ExportProfile names a predefined record filter for exports.
type ExportProfile string

const (
	// ExportProfileEnriched keeps only records with a contact email.
	ExportProfileEnriched ExportProfile = "enriched"
	ExportProfileAll      ExportProfile = "all"
)

// ExportFormat is the serialization format of an export.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// Content types used for documents and exports.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
