package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const ordersCSV = "Category,Order Date,Amount\n" +
	"A,2024-01-05,100.50\n" +
	"B,2024-02-10,20\n" +
	"A,2024-03-15,30\n"

func TestDecodeCSV(t *testing.T) {
	ds, err := DecodeCSV(strings.NewReader(ordersCSV), Options{})
	require.NoError(t, err)

	require.Equal(t, 3, ds.NumRows())
	require.Equal(t, 3, ds.NumCols())
	require.Equal(t, "category", ds.Columns[0].Name)
	require.Equal(t, "order_date", ds.Columns[1].Name)
	require.Equal(t, "amount", ds.Columns[2].Name)

	require.Equal(t, TypeCategorical, ds.Columns[0].Type)
	require.Equal(t, TypeDate, ds.Columns[1].Type)
	require.Equal(t, TypeNumeric, ds.Columns[2].Type)

	require.Equal(t, "100.50", ds.Cell(0, 2))
}

func TestDecodeCSVHeaderRenames(t *testing.T) {
	body := "OrderID,Customer,SubCategory\n1,Acme,Chairs\n"
	ds, err := DecodeCSV(strings.NewReader(body), Options{})
	require.NoError(t, err)
	require.Equal(t, "order_id", ds.Columns[0].Name)
	require.Equal(t, "customer_name", ds.Columns[1].Name)
	require.Equal(t, "sub_category", ds.Columns[2].Name)
}

func TestDecodeCSVDedupesCollidingHeaders(t *testing.T) {
	// The second "a" cannot take a_2: that name is already a real header.
	body := "a,a_2,a\n1,2,3\n"
	ds, err := DecodeCSV(strings.NewReader(body), Options{})
	require.NoError(t, err)

	names := []string{ds.Columns[0].Name, ds.Columns[1].Name, ds.Columns[2].Name}
	require.Equal(t, []string{"a", "a_2", "a_3"}, names)
}

func TestDecodeCSVLatin1Fallback(t *testing.T) {
	// "Café" with an ISO 8859-1 encoded é (0xE9), invalid as UTF-8.
	raw := []byte("name,amount\nCaf\xe9,10\n")
	ds, err := DecodeCSV(bytes.NewReader(raw), Options{})
	require.NoError(t, err)
	require.Equal(t, "Café", ds.Cell(0, 0))
}

func TestDecodeCSVRaggedRowsPadded(t *testing.T) {
	body := "a,b,c\n1,2\n4,5,6,7\n"
	ds, err := DecodeCSV(strings.NewReader(body), Options{})
	require.NoError(t, err)
	require.Equal(t, 2, ds.NumRows())
	require.Equal(t, "", ds.Cell(0, 2))
	require.Equal(t, "6", ds.Cell(1, 2))
}

func TestDecodeCSVSkipsBlankRows(t *testing.T) {
	body := "a,b\n1,2\n,\n3,4\n"
	ds, err := DecodeCSV(strings.NewReader(body), Options{})
	require.NoError(t, err)
	require.Equal(t, 2, ds.NumRows())
}

func TestDecodeCSVEmptyFails(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader(""), Options{})
	require.Error(t, err)
}

func TestDecodeExcelFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	sh := "Orders"
	f.SetSheetName("Sheet1", sh)
	require.NoError(t, f.SetSheetRow(sh, "A1", &[]string{"Category", "Amount"}))
	require.NoError(t, f.SetSheetRow(sh, "A2", &[]string{"A", "12.5"}))
	require.NoError(t, f.SetSheetRow(sh, "A3", &[]string{"B", "7"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ds, err := DecodeExcel(bytes.NewReader(buf.Bytes()), Options{})
	require.NoError(t, err)
	require.Equal(t, 2, ds.NumRows())
	require.Equal(t, "category", ds.Columns[0].Name)
	require.Equal(t, TypeNumeric, ds.Columns[1].Type)
}

func TestDecodeDispatchesOnExtension(t *testing.T) {
	_, err := Decode("orders.csv", strings.NewReader(ordersCSV), Options{})
	require.NoError(t, err)

	_, err = Decode("orders.pdf", strings.NewReader(ordersCSV), Options{})
	require.Error(t, err)
}

func TestDecodeExcelGarbageFails(t *testing.T) {
	_, err := DecodeExcel(strings.NewReader("definitely not a zip"), Options{})
	require.Error(t, err)
}
