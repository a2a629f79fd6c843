// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"context"
	"encoding/json"
	"time"
)

// TelemetryData holds all telemetry data of one archive extraction.
type TelemetryData struct {
	// ArchiveName is the name of the processed archive
	ArchiveName string `json:"archive_name"`

	// ChunksCompressed is the number of chunks run through the LZO decoder
	ChunksCompressed int64 `json:"chunks_compressed"`

	// ChunksRaw is the number of chunks copied verbatim
	ChunksRaw int64 `json:"chunks_raw"`

	// ExtractedFiles is the number of fully written files
	ExtractedFiles int64 `json:"extracted_files"`

	// ExtractionDuration is the time it took to extract the archive
	ExtractionDuration time.Duration `json:"extraction_duration"`

	// ExtractionErrors is the number of errors during extraction
	ExtractionErrors int64 `json:"extraction_errors"`

	// ExtractionSize is the number of bytes written to the destination
	ExtractionSize int64 `json:"extraction_size"`

	// InputSize is the size of the archive
	InputSize int64 `json:"input_size"`

	// LastExtractionError is the last error during extraction
	LastExtractionError error `json:"last_extraction_error"`

	// PatternMismatches is the number of files skipped by the filter
	PatternMismatches int64 `json:"pattern_mismatches"`
}

// String returns a string representation of [TelemetryData].
func (td TelemetryData) String() string {
	b, _ := json.Marshal(td)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (td TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if td.LastExtractionError != nil {
		lastError = td.LastExtractionError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastExtractionError string `json:"last_extraction_error"`
		*Alias
	}{
		LastExtractionError: lastError,
		Alias:               (*Alias)(&td),
	})
}

// TelemetryHook is a function type that performs operations on
// [TelemetryData] after an extraction has finished which can be used to
// submit the data to a telemetry service, for example.
type TelemetryHook func(context.Context, *TelemetryData)
