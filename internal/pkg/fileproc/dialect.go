package fileproc

import (
	"errors"
	"strings"
)

// dialectSampleSize 嗅探使用的前缀字符数
const dialectSampleSize = 1024

var candidateDelimiters = []rune{',', ';', '\t', '|'}

var errDialectUndetermined = errors.New("could not determine delimiter")

// Dialect CSV 方言
type Dialect struct {
	Delimiter      rune   `json:"delimiter"`
	QuoteChar      rune   `json:"quotechar"`
	LineTerminator string `json:"lineterminator"`
	Sniffed        bool   `json:"sniffed"`
}

// DefaultDialect 嗅探失败时使用的逗号分隔方言
func DefaultDialect() Dialect {
	return Dialect{Delimiter: ',', QuoteChar: '"', LineTerminator: "\n"}
}

// toMap 输出到元数据
func (d Dialect) toMap() map[string]any {
	return map[string]any{
		"delimiter":      string(d.Delimiter),
		"quotechar":      string(d.QuoteChar),
		"lineterminator": d.LineTerminator,
		"sniffed":        d.Sniffed,
	}
}

// SniffDialect 对样本做统计嗅探，失败时返回默认方言
func SniffDialect(content string) Dialect {
	d, err := sniff(content)
	if err != nil {
		return DefaultDialect()
	}
	return d
}

func sniff(content string) (Dialect, error) {
	sample := content
	truncated := false
	if runes := []rune(content); len(runes) > dialectSampleSize {
		sample = string(runes[:dialectSampleSize])
		truncated = true
	}

	terminator := "\n"
	if strings.Contains(sample, "\r\n") {
		terminator = "\r\n"
	}
	sample = strings.ReplaceAll(sample, "\r\n", "\n")
	quote := detectQuote(strings.Split(sample, "\n"))

	lines := splitRecords(sample, quote)
	// 截断样本的最后一行不完整
	if truncated && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}
	lines = nonEmptyLines(lines)
	if len(lines) == 0 {
		return Dialect{}, errDialectUndetermined
	}

	var (
		best      rune
		bestScore float64
		bestCount int
	)
	for _, delim := range candidateDelimiters {
		score, count := delimiterConsistency(lines, delim, quote)
		if count == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && count > bestCount) {
			best, bestScore, bestCount = delim, score, count
		}
	}
	if best == 0 || bestScore < 0.9 {
		return Dialect{}, errDialectUndetermined
	}

	return Dialect{Delimiter: best, QuoteChar: quote, LineTerminator: terminator, Sniffed: true}, nil
}

// delimiterConsistency 返回各行分隔符出现次数等于众数的比例及该众数
func delimiterConsistency(lines []string, delim, quote rune) (float64, int) {
	freq := map[int]int{}
	for _, line := range lines {
		freq[countOutsideQuotes(line, delim, quote)]++
	}
	mode, modeLines := 0, 0
	for count, n := range freq {
		if count == 0 {
			continue
		}
		if n > modeLines || (n == modeLines && count > mode) {
			mode, modeLines = count, n
		}
	}
	if mode == 0 {
		return 0, 0
	}
	return float64(modeLines) / float64(len(lines)), mode
}

func countOutsideQuotes(line string, delim, quote rune) int {
	inQuote := false
	n := 0
	for _, r := range line {
		switch {
		case r == quote:
			inQuote = !inQuote
		case r == delim && !inQuote:
			n++
		}
	}
	return n
}

// detectQuote 单引号只在出现于字段开头且没有双引号时才被采用
func detectQuote(lines []string) rune {
	double, single := 0, 0
	for _, line := range lines {
		double += strings.Count(line, `"`)
		prev := rune(-1)
		for _, r := range line {
			if r == '\'' && (prev == -1 || isCandidateDelimiter(prev)) {
				single++
			}
			prev = r
		}
	}
	if single > 0 && double == 0 {
		return '\''
	}
	return '"'
}

func isCandidateDelimiter(r rune) bool {
	for _, d := range candidateDelimiters {
		if r == d {
			return true
		}
	}
	return false
}

// splitRecords 按换行切分记录，引号内的换行属于字段内容
func splitRecords(sample string, quote rune) []string {
	var records []string
	inQuote := false
	start := 0
	for i, r := range sample {
		switch {
		case r == quote:
			inQuote = !inQuote
		case r == '\n' && !inQuote:
			records = append(records, sample[start:i])
			start = i + 1
		}
	}
	return append(records, sample[start:])
}

func nonEmptyLines(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
