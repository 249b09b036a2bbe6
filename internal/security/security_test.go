package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	m := NewManager(1024)

	f, err := m.DetectFormat("orders.csv")
	require.NoError(t, err)
	require.Equal(t, FormatCSV, f)

	f, err = m.DetectFormat("Orders.XLSX")
	require.NoError(t, err)
	require.Equal(t, FormatExcel, f)

	_, err = m.DetectFormat("orders.xls")
	require.ErrorIs(t, err, ErrUnsupportedExtension)

	_, err = m.DetectFormat("orders")
	require.ErrorIs(t, err, ErrUnsupportedExtension)
}

func TestValidateUploadSizeCap(t *testing.T) {
	m := NewManager(100)

	_, err := m.ValidateUpload("orders.csv", 100)
	require.NoError(t, err)

	_, err = m.ValidateUpload("orders.csv", 101)
	require.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestSniffContent(t *testing.T) {
	m := NewManager(0)

	require.NoError(t, m.SniffContent(FormatExcel, []byte("PK\x03\x04rest")))
	require.ErrorIs(t, m.SniffContent(FormatExcel, []byte("not a zip")), ErrContentMismatch)

	require.NoError(t, m.SniffContent(FormatCSV, []byte("a,b\n1,2\n")))
	require.ErrorIs(t, m.SniffContent(FormatCSV, []byte("bin\x00ary")), ErrContentMismatch)
}
