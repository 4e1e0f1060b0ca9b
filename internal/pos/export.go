package pos

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ProviderExport names sales that came from an uploaded POS export file
const ProviderExport = "export"

var (
	ErrUnsupportedExport = errors.New("unsupported export format")
	// ErrExportHeader is returned when no item name or id column is found.
	ErrExportHeader = errors.New("export has no recognizable item column")
)

var (
	nameHeaders = []string{"item", "item name", "name", "product", "product name", "produit", "article", "libelle", "libellé", "designation", "désignation"}
	qtyHeaders  = []string{"qty", "quantity", "quantité", "quantite", "qté", "qte", "sold", "units sold", "count"}
	idHeaders   = []string{"sku", "id", "item id", "product id", "plu", "code"}
)

type exportColumns struct {
	name, qty, id int
}

// ParseExport reads a CSV or XLSX sales export. The format follows the file
// extension; rows without a quantity column count one unit each.
func ParseExport(r io.Reader, filename string) ([]SaleLine, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		rows, err = readCSV(r)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExport, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	return normalizeExport(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = sniffDelimiter(data)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv export: %w", err)
	}
	return rows, nil
}

// sniffDelimiter picks ';' when the header line has more semicolons than commas
func sniffDelimiter(data []byte) rune {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func readXLSX(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx export: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func normalizeExport(rows [][]string) ([]SaleLine, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols := detectColumns(rows[0])
	if cols.name < 0 && cols.id < 0 {
		return nil, ErrExportHeader
	}

	var lines []SaleLine
	for _, row := range rows[1:] {
		line := SaleLine{
			ExternalItemName: cell(row, cols.name),
			ExternalItemID:   cell(row, cols.id),
			Quantity:         1,
		}
		if line.ExternalItemName == "" && line.ExternalItemID == "" {
			continue
		}
		if cols.qty >= 0 {
			line.Quantity = parseQuantity(strings.ReplaceAll(cell(row, cols.qty), ",", "."))
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func detectColumns(header []string) exportColumns {
	cols := exportColumns{name: -1, qty: -1, id: -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case cols.name < 0 && containsString(nameHeaders, h):
			cols.name = i
		case cols.qty < 0 && containsString(qtyHeaders, h):
			cols.qty = i
		case cols.id < 0 && containsString(idHeaders, h):
			cols.id = i
		}
	}
	return cols
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
