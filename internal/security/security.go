package security

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported upload format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
)

// Manager enforces upload guardrails: extension allow-list, byte caps, and
// content sniffing so mislabeled files are rejected before parsing.
type Manager struct {
	maxUploadBytes int64
	allowedExts    map[string]Format
}

// ErrUnsupportedExtension indicates the uploaded file extension is not supported.
var ErrUnsupportedExtension = errors.New("security: unsupported file extension")

// ErrUploadTooLarge indicates the upload exceeds the configured byte cap.
var ErrUploadTooLarge = errors.New("security: upload too large")

// ErrContentMismatch indicates file contents do not match the declared format.
var ErrContentMismatch = errors.New("security: file content does not match extension")

// NewManager constructs an upload guard. maxUploadBytes <= 0 disables the
// size check (tests only; servers should always cap).
func NewManager(maxUploadBytes int64) *Manager {
	return &Manager{
		maxUploadBytes: maxUploadBytes,
		allowedExts: map[string]Format{
			".csv":  FormatCSV,
			".xlsx": FormatExcel,
		},
	}
}

// MaxUploadBytes returns the configured cap.
func (m *Manager) MaxUploadBytes() int64 { return m.maxUploadBytes }

// DetectFormat resolves the declared format from the uploaded file name.
func (m *Manager) DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	f, ok := m.allowedExts[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	return f, nil
}

// ValidateUpload checks the declared name and size against the guardrails.
func (m *Manager) ValidateUpload(filename string, size int64) (Format, error) {
	f, err := m.DetectFormat(filename)
	if err != nil {
		return "", err
	}
	if m.maxUploadBytes > 0 && size > m.maxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrUploadTooLarge, size, m.maxUploadBytes)
	}
	return f, nil
}

// SniffContent verifies the first bytes of the upload plausibly match the
// declared format: XLSX must be a ZIP container, CSV must be text.
func (m *Manager) SniffContent(format Format, head []byte) error {
	switch format {
	case FormatExcel:
		if !bytes.HasPrefix(head, []byte("PK")) {
			return fmt.Errorf("%w: xlsx is not a zip container", ErrContentMismatch)
		}
	case FormatCSV:
		limit := len(head)
		if limit > 512 {
			limit = 512
		}
		if bytes.IndexByte(head[:limit], 0x00) >= 0 {
			return fmt.Errorf("%w: csv contains binary data", ErrContentMismatch)
		}
	default:
		return fmt.Errorf("%w: unknown format %q", ErrContentMismatch, format)
	}
	return nil
}
