package fileproc

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/montanaflynn/stats"
)

const (
	csvPreviewRows     = 10
	csvSampleRows      = 20
	csvMaxNumericStats = 5
	missingDisplay     = "NaN"
)

var csvMediaTypes = []string{"text/csv", "application/csv", "text/comma-separated-values", "application/vnd.ms-excel"}

// missingTokens 视为缺失值的单元格内容
var missingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan", "1.#IND", "1.#QNAN",
	"<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

func isCSV(mediaType, ext string) bool {
	return ext == ".csv" || (slices.Contains(csvMediaTypes, mediaType) && ext != ".xls")
}

// CSVHandler 表格数据
type CSVHandler struct{}

// NewCSVHandler 创建 CSV 处理器
func NewCSVHandler() *CSVHandler {
	return &CSVHandler{}
}

// Name 处理器名称
func (h *CSVHandler) Name() string { return string(TypeCSV) }

// CanProcess 接受 CSV 媒体类型或 .csv
func (h *CSVHandler) CanProcess(mediaType, fileName string) bool {
	return isCSV(mediaType, extOf(fileName))
}

// table 解析后的表格，缺失单元格为 nil
type table struct {
	columns []string
	rows    [][]*string
}

// Process 解码、嗅探方言、解析并汇总
func (h *CSVHandler) Process(ctx context.Context, data []byte, fileName, mediaType string) (*Result, error) {
	content, encodingUsed, err := decodeText(data, csvEncodingOrder)
	if err != nil {
		return nil, newProcessingError(fileName, "decode", err)
	}

	dialect := SniffDialect(content)
	tbl, err := parseTable2D(content, dialect)
	if err != nil {
		return nil, newProcessingError(fileName, "parse", err)
	}

	numeric := numericColumns(tbl)

	res := newResult(TypeCSV)
	res.Content = csvNarrative(tbl, numeric)
	res.Preview = fmt.Sprintf("Preview of first %d rows:\n\n%s", min(csvPreviewRows, len(tbl.rows)), renderAligned(tbl, numeric, csvPreviewRows))
	res.Metadata["columns"] = tbl.columns
	res.Metadata["shape"] = []int{len(tbl.rows), len(tbl.columns)}
	res.Metadata["dialect"] = dialect.toMap()
	res.Metadata["encoding_used"] = encodingUsed
	res.Statistics = csvSummary(tbl, numeric)
	return res, nil
}

// parseTable2D 首行为表头，行长度按表头补齐或截断
func parseTable2D(content string, d Dialect) (*table, error) {
	swapQuotes := d.QuoteChar == '\''
	if swapQuotes {
		content = swapQuoteChars(content)
	}

	r := csv.NewReader(strings.NewReader(content))
	r.Comma = d.Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	records = slices.DeleteFunc(records, func(rec []string) bool {
		return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
	})
	if len(records) == 0 {
		return nil, errors.New("no columns to parse from file")
	}

	if swapQuotes {
		for _, rec := range records {
			for i := range rec {
				rec[i] = swapQuoteChars(rec[i])
			}
		}
	}

	tbl := &table{columns: headerNames(records[0])}
	for _, rec := range records[1:] {
		row := make([]*string, len(tbl.columns))
		for i := range row {
			if i >= len(rec) {
				continue
			}
			v := rec[i]
			if !isMissing(v) {
				row[i] = &v
			}
		}
		tbl.rows = append(tbl.rows, row)
	}
	return tbl, nil
}

// headerNames 空表头命名为 Unnamed: N，重名追加 .N
func headerNames(header []string) []string {
	seen := map[string]int{}
	names := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func swapQuoteChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\'':
			return '"'
		case '"':
			return '\''
		}
		return r
	}, s)
}

func isMissing(v string) bool {
	return slices.Contains(missingTokens, strings.TrimSpace(v))
}

// numericColumns 所有非缺失值都能解析为数字且至少有一个数字的列
// 有数据行但全部缺失的列也算数值列，没有数据行时所有列都是文本列
func numericColumns(tbl *table) []bool {
	numeric := make([]bool, len(tbl.columns))
	if len(tbl.rows) == 0 {
		return numeric
	}
	for c := range tbl.columns {
		parsed, present := 0, 0
		for _, row := range tbl.rows {
			if row[c] == nil {
				continue
			}
			present++
			if _, err := strconv.ParseFloat(strings.TrimSpace(*row[c]), 64); err != nil {
				break
			}
			parsed++
		}
		numeric[c] = parsed == present
	}
	return numeric
}

func columnValues(tbl *table, c int) []float64 {
	var values []float64
	for _, row := range tbl.rows {
		if row[c] == nil {
			continue
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(*row[c]), 64); err == nil {
			values = append(values, f)
		}
	}
	return values
}

func csvSummary(tbl *table, numeric []bool) map[string]any {
	numericCount := 0
	for _, n := range numeric {
		if n {
			numericCount++
		}
	}

	missing := 0
	duplicates := 0
	seen := map[string]struct{}{}
	for _, row := range tbl.rows {
		var key strings.Builder
		for _, cell := range row {
			if cell == nil {
				missing++
				key.WriteString("\x00nil")
			} else {
				key.WriteString("\x00v")
				key.WriteString(*cell)
			}
		}
		if _, dup := seen[key.String()]; dup {
			duplicates++
		} else {
			seen[key.String()] = struct{}{}
		}
	}

	summary := map[string]any{
		"row_count":       len(tbl.rows),
		"column_count":    len(tbl.columns),
		"numeric_columns": numericCount,
		"text_columns":    len(tbl.columns) - numericCount,
		"missing_values":  missing,
		"duplicate_rows":  duplicates,
	}

	if numericCount > 0 {
		numericStats := map[string]any{}
		for c, name := range tbl.columns {
			if !numeric[c] {
				continue
			}
			if len(numericStats) == csvMaxNumericStats {
				break
			}
			numericStats[name] = describeColumn(columnValues(tbl, c))
		}
		summary["numeric_stats"] = numericStats
	}
	return summary
}

// describeColumn 计算均值、中位数、最值，全部缺失时各项为 nil
func describeColumn(values []float64) map[string]any {
	if len(values) == 0 {
		return map[string]any{"mean": nil, "median": nil, "min": nil, "max": nil}
	}
	data := stats.Float64Data(values)
	mean, _ := data.Mean()
	median, _ := data.Median()
	lo, _ := data.Min()
	hi, _ := data.Max()
	return map[string]any{"mean": mean, "median": median, "min": lo, "max": hi}
}

// renderAligned 以等宽对齐渲染前 limit 行，数值列右对齐
func renderAligned(tbl *table, numeric []bool, limit int) string {
	rows := tbl.rows
	if len(rows) > limit {
		rows = rows[:limit]
	}

	widths := make([]int, len(tbl.columns))
	for c, name := range tbl.columns {
		widths[c] = runewidth.StringWidth(name)
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(row))
		for c, cell := range row {
			v := missingDisplay
			if cell != nil {
				v = strings.ReplaceAll(*cell, "\n", " ")
			}
			cells[i][c] = v
			widths[c] = max(widths[c], runewidth.StringWidth(v))
		}
	}

	pad := func(s string, c int) string {
		if numeric[c] {
			return runewidth.FillLeft(s, widths[c])
		}
		return runewidth.FillRight(s, widths[c])
	}

	lines := make([]string, 0, len(rows)+1)
	header := make([]string, len(tbl.columns))
	for c, name := range tbl.columns {
		header[c] = pad(name, c)
	}
	lines = append(lines, strings.TrimRight(strings.Join(header, "  "), " "))
	for _, row := range cells {
		parts := make([]string, len(row))
		for c, v := range row {
			parts[c] = pad(v, c)
		}
		lines = append(lines, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	return strings.Join(lines, "\n")
}

// csvNarrative 面向语言模型的文字版摘要
func csvNarrative(tbl *table, numeric []bool) string {
	parts := []string{
		"CSV Data Summary:",
		fmt.Sprintf("- %d rows and %d columns", len(tbl.rows), len(tbl.columns)),
		fmt.Sprintf("- Columns: %s", strings.Join(tbl.columns, ", ")),
		"",
		"Sample data:",
		renderAligned(tbl, numeric, csvSampleRows),
	}
	if len(tbl.rows) > csvSampleRows {
		parts = append(parts, fmt.Sprintf("\n... and %d more rows", len(tbl.rows)-csvSampleRows))
	}
	return strings.Join(parts, "\n")
}
