package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code defines a canonical error code surfaced to the dashboard user.
type Code string

const (
	// Validation & Input
	Validation    Code = "VALIDATION"
	ColumnUnknown Code = "COLUMN_UNKNOWN"
	CursorInvalid Code = "CURSOR_INVALID"

	// Resource & Limits
	BusyResource   Code = "BUSY_RESOURCE"
	Timeout        Code = "TIMEOUT"
	UploadTooLarge Code = "UPLOAD_TOO_LARGE"

	// IO & Formats
	ParseFailed       Code = "PARSE_FAILED"
	UnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	ExportFailed      Code = "EXPORT_FAILED"

	// Sessions
	SessionNotFound Code = "SESSION_NOT_FOUND"

	// Analysis & Charts
	ColumnIncompatible Code = "COLUMN_INCOMPATIBLE"
	ChartIncompatible  Code = "CHART_INCOMPATIBLE"

	Internal Code = "INTERNAL"
)

// Entry documents a code's default message, HTTP status, and next steps.
type Entry struct {
	Code      Code
	Status    int
	Message   string
	NextSteps []string
}

// catalog maps canonical codes to guidance. Messages can be overridden per error.
var catalog = map[Code]Entry{
	Validation:    {Code: Validation, Status: http.StatusBadRequest, Message: "invalid inputs", NextSteps: []string{"Correct the highlighted fields and retry"}},
	ColumnUnknown: {Code: ColumnUnknown, Status: http.StatusBadRequest, Message: "column not found in dataset", NextSteps: []string{"Pick a column from the current dataset"}},
	CursorInvalid: {Code: CursorInvalid, Status: http.StatusBadRequest, Message: "preview cursor is stale for the current filters", NextSteps: []string{"Restart the preview from the first page"}},

	BusyResource:   {Code: BusyResource, Status: http.StatusServiceUnavailable, Message: "concurrent request limit reached", NextSteps: []string{"Retry after a short delay"}},
	Timeout:        {Code: Timeout, Status: http.StatusGatewayTimeout, Message: "operation exceeded configured time limit", NextSteps: []string{"Apply narrower filters or upload a smaller dataset"}},
	UploadTooLarge: {Code: UploadTooLarge, Status: http.StatusRequestEntityTooLarge, Message: "upload exceeds configured size", NextSteps: []string{"Trim the file or raise the upload limit"}},

	ParseFailed:       {Code: ParseFailed, Status: http.StatusBadRequest, Message: "failed to parse uploaded file", NextSteps: []string{"Check the file is well-formed CSV or XLSX with a header row"}},
	UnsupportedFormat: {Code: UnsupportedFormat, Status: http.StatusBadRequest, Message: "unsupported file format", NextSteps: []string{"Upload a .csv or .xlsx file"}},
	ExportFailed:      {Code: ExportFailed, Status: http.StatusInternalServerError, Message: "failed to serialize filtered data", NextSteps: []string{"Retry the export"}},

	SessionNotFound: {Code: SessionNotFound, Status: http.StatusNotFound, Message: "session not found or expired", NextSteps: []string{"Upload a dataset to start a new session"}},

	ColumnIncompatible: {Code: ColumnIncompatible, Status: http.StatusBadRequest, Message: "column type is incompatible with this metric", NextSteps: []string{"Choose a numeric column for KPI and Top-N metrics"}},
	ChartIncompatible:  {Code: ChartIncompatible, Status: http.StatusBadRequest, Message: "selected columns are incompatible with this chart type", NextSteps: []string{"Line charts need a date axis", "Scatter charts need two numeric axes", "Bar charts need a categorical axis and numeric metric"}},

	Internal: {Code: Internal, Status: http.StatusInternalServerError, Message: "internal error", NextSteps: []string{"Retry; if it persists, check the server logs"}},
}

// Error carries a canonical code and an optional detail message.
type Error struct {
	Code   Code
	Detail string
}

// Error renders "CODE: detail" falling back to the catalog message.
func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Detail)
	if msg == "" {
		if entry, ok := catalog[e.Code]; ok {
			msg = entry.Message
		}
	}
	if msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", string(e.Code), msg)
}

// New constructs an Error for a code with an optional message override.
func New(code Code, detail string) *Error {
	return &Error{Code: code, Detail: detail}
}

// Wrapf formats details and constructs an Error for the code.
func Wrapf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the canonical code from err, defaulting to Internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// Status maps err to the HTTP status of its code.
func Status(err error) int {
	if entry, ok := catalog[CodeOf(err)]; ok {
		return entry.Status
	}
	return http.StatusInternalServerError
}

// UserMessage builds the banner text shown to the user: the error text plus
// compact next-step guidance for clients that surface only a string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	var e *Error
	if errors.As(err, &e) {
		text = e.Error()
		if entry, ok := catalog[e.Code]; ok && len(entry.NextSteps) > 0 {
			text += " | next steps: " + strings.Join(entry.NextSteps, "; ")
		}
	}
	return text
}
