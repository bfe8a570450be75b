package handler

import (
	"boothscan/internal/domain"
	"boothscan/internal/stats"
)

// Swagger type definitions for API documentation.

// Response is the generic success envelope.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody is the error envelope.
type ErrorResponseBody struct {
	Success bool     `json:"success" example:"false"`
	Error   APIError `json:"error"`
}

// RejectedFile describes a file refused by intake.
type RejectedFile struct {
	FileName string `json:"file_name" example:"notes.txt"`
	Code     string `json:"code" example:"UNSUPPORTED_TYPE"`
	Message  string `json:"message" example:"unsupported file type; only PDF documents are accepted"`
}

// UploadFilesResponse is the outcome of adding files to a session batch.
type UploadFilesResponse struct {
	Accepted []domain.CandidateFile `json:"accepted"`
	Rejected []RejectedFile         `json:"rejected"`
	Queued   int                    `json:"queued" example:"3"`
}

// ResultView is one extraction result with its derived stats.
type ResultView struct {
	Index int `json:"index" example:"0"`
	domain.ExtractionResult
	Stats       domain.DerivedStats `json:"stats"`
	Percentages stats.Percentages   `json:"percentages"`
}

// ResultsResponse lists the results of the last successful submission.
type ResultsResponse struct {
	Results     []ResultView        `json:"results"`
	Totals      domain.DerivedStats `json:"totals"`
	Percentages stats.Percentages   `json:"percentages"`
}
