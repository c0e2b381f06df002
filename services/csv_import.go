package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is returned after parsing and validating an uploaded file.
type ValidationResult struct {
	TotalRows int               `json:"total_rows"`
	ValidRows int               `json:"valid_rows"`
	ErrorRows int               `json:"error_rows"`
	Errors    []ValidationError `json:"errors"`
	Items     []LineItem        `json:"-"`
	FileName  string            `json:"-"`
}

// Line item field keys used by the importer and the estimate_items collection.
const (
	FieldL1        = "l1"
	FieldL2        = "l2"
	FieldL3        = "l3"
	FieldL4        = "l4"
	FieldName      = "name"
	FieldSpec      = "spec"
	FieldQty       = "qty"
	FieldUnit      = "unit"
	FieldCostPrice = "cost_price"
	FieldRate      = "rate"
	FieldUnitPrice = "unit_price"
	FieldAmount    = "amount"
	FieldRemark    = "remark"
	FieldSortKey   = "sort_key"
)

// headerAliases maps normalized column headers to field keys. Japanese
// headers follow the estimate spreadsheet; English ones match the field keys.
var headerAliases = map[string]string{
	"大項目": FieldL1, "l1": FieldL1,
	"中項目": FieldL2, "l2": FieldL2,
	"小項目": FieldL3, "l3": FieldL3,
	"部分項目": FieldL4, "l4": FieldL4,
	"名称": FieldName, "name": FieldName,
	"規格": FieldSpec, "spec": FieldSpec,
	"数量": FieldQty, "qty": FieldQty,
	"単位": FieldUnit, "unit": FieldUnit,
	"原単価": FieldCostPrice, "cost_price": FieldCostPrice,
	"掛率": FieldRate, "rate": FieldRate,
	"売単価": FieldUnitPrice, "単価": FieldUnitPrice, "unit_price": FieldUnitPrice,
	"見積金額": FieldAmount, "金額": FieldAmount, "amount": FieldAmount,
	"備考": FieldRemark, "remark": FieldRemark,
	"sort_key": FieldSortKey,
}

var fieldLabels = map[string]string{
	FieldName: "名称",
}

func normalizeHeader(h string) string {
	h = width.Fold.String(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSuffix(h, "*")
	h = strings.ReplaceAll(h, " ", "")
	return strings.ToLower(h)
}

// decodeText strips a UTF-8 BOM and converts Shift_JIS input to UTF-8. Input
// that is already valid UTF-8 is left as is.
func decodeText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return data, nil
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode Shift_JIS: %w", err)
	}
	return out, nil
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	data, err := decodeText(raw)
	if err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// parseTable dispatches on the file extension.
func parseTable(r io.Reader, fileName string) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return parseCSV(r)
	case ".xlsx":
		return parseExcel(r)
	}
	return nil, nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
}

// mapHeadersToFields maps uploaded column headers to field keys.
// Returns ordered list of field keys (one per column) and any unrecognized columns.
func mapHeadersToFields(headers []string) ([]string, []string) {
	mapped := make([]string, len(headers))
	var unrecognized []string
	for i, h := range headers {
		if key, ok := headerAliases[normalizeHeader(h)]; ok {
			mapped[i] = key
		} else if strings.TrimSpace(h) != "" {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// ImportLineItems parses a CSV or XLSX estimate sheet. Blank rows are
// ignored; rows without a name are reported and skipped. Missing unit prices
// and amounts are derived from cost, rate and quantity.
func ImportLineItems(r io.Reader, fileName string) (*ValidationResult, error) {
	headers, dataRows, err := parseTable(r, fileName)
	if err != nil {
		return nil, err
	}

	columnKeys, _ := mapHeadersToFields(headers)
	if !slices.Contains(columnKeys, FieldName) {
		return nil, fmt.Errorf("missing required column %q", fieldLabels[FieldName])
	}

	result := &ValidationResult{FileName: fileName}
	errorRows := make(map[int]bool)

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		data := make(map[string]string, len(columnKeys))
		blank := true
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[colIdx])
			if v != "" {
				blank = false
			}
			data[key] = v
		}
		if blank {
			continue
		}
		result.TotalRows++

		if data[FieldName] == "" {
			result.Errors = append(result.Errors, ValidationError{
				Row:     rowNum,
				Field:   fieldLabels[FieldName],
				Message: fmt.Sprintf("%s is required", fieldLabels[FieldName]),
			})
			errorRows[rowNum] = true
			continue
		}

		result.Items = append(result.Items, lineItemFromRow(data))
	}

	result.ErrorRows = len(errorRows)
	result.ValidRows = result.TotalRows - result.ErrorRows
	return result, nil
}

func lineItemFromRow(data map[string]string) LineItem {
	it := LineItem{
		L1:        data[FieldL1],
		L2:        data[FieldL2],
		L3:        data[FieldL3],
		L4:        data[FieldL4],
		Name:      data[FieldName],
		Spec:      data[FieldSpec],
		Qty:       ParseAmount(data[FieldQty]),
		Unit:      data[FieldUnit],
		CostPrice: ParseAmount(data[FieldCostPrice]),
		Rate:      ParseAmount(data[FieldRate]),
		UnitPrice: ParseAmount(data[FieldUnitPrice]),
		Amount:    ParseAmount(data[FieldAmount]),
		Remark:    data[FieldRemark],
		SortKey:   ParseAmount(data[FieldSortKey]),
	}
	return NormalizeLineItem(it)
}

// infoAliases maps the key column of a site information sheet to fields.
var infoAliases = map[string]string{
	"顧客名": "client", "client_name": "client", "client": "client",
	"工事名": "project", "project_name": "project", "project": "project",
	"工事場所": "location", "location": "location",
	"工期": "term", "term": "term",
	"見積有効期限": "expiry", "有効期限": "expiry", "expiry": "expiry",
	"日付": "date", "見積日": "date", "date": "date",
}

// ParseDocumentInfo reads a two-column key/value sheet (CSV or XLSX) holding
// the client and project details. Unknown keys are ignored.
func ParseDocumentInfo(r io.Reader, fileName string, company CompanyProfile) (DocumentInfo, error) {
	headers, rows, err := parseTable(r, fileName)
	if err != nil {
		return DocumentInfo{}, err
	}
	info := DocumentInfo{Company: company}
	for _, row := range append([][]string{headers}, rows...) {
		if len(row) < 2 {
			continue
		}
		v := strings.TrimSpace(row[1])
		switch infoAliases[normalizeHeader(row[0])] {
		case "client":
			info.ClientName = v
		case "project":
			info.ProjectName = v
		case "location":
			info.Location = v
		case "term":
			info.Term = v
		case "expiry":
			info.Expiry = v
		case "date":
			info.Date = v
		}
	}
	return info, nil
}

// GenerateErrorReport creates a downloadable .xlsx file from validation errors.
func GenerateErrorReport(errors []ValidationError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	defaultSheet := f.GetSheetName(0)
	f.SetSheetName(defaultSheet, sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#B31A26"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "行")
	f.SetCellValue(sheet, "B1", "項目")
	f.SetCellValue(sheet, "C1", "エラー")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, sanitizeExcelCell(e.Field))
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
