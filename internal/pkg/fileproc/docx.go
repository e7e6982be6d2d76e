package fileproc

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

const docxMediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var (
	errMissingDocument = errors.New("word/document.xml not found in archive")

	headingStylePattern = regexp.MustCompile(`(?i)^heading\s*([1-9])$`)
)

// DOCXHandler Word 文档（OOXML）
type DOCXHandler struct {
	previewLength int
	words         WordCounter
}

// NewDOCXHandler 创建 Word 处理器
func NewDOCXHandler(previewLength int, words WordCounter) *DOCXHandler {
	if words == nil {
		words = FieldsCounter{}
	}
	return &DOCXHandler{previewLength: previewLength, words: words}
}

// Name 处理器名称
func (h *DOCXHandler) Name() string { return string(TypeDOCX) }

// CanProcess 接受 docx 媒体类型或 .docx
func (h *DOCXHandler) CanProcess(mediaType, fileName string) bool {
	return mediaType == docxMediaType || extOf(fileName) == ".docx"
}

// Process 按文档顺序遍历正文，保留标题层级与表格
func (h *DOCXHandler) Process(ctx context.Context, data []byte, fileName, mediaType string) (*Result, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, newProcessingError(fileName, "open archive", err)
	}

	docFile := findZipEntry(archive, "word/document.xml")
	if docFile == nil {
		return nil, newProcessingError(fileName, "open archive", errMissingDocument)
	}
	rc, err := docFile.Open()
	if err != nil {
		return nil, newProcessingError(fileName, "read document", err)
	}
	body, err := parseDocumentBody(rc)
	rc.Close()
	if err != nil {
		return nil, newProcessingError(fileName, "parse document", err)
	}

	fullText := strings.Join(body.parts, "\n")

	res := newResult(TypeDOCX)
	res.Content = fullText
	res.Preview = buildPreview(fullText, h.previewLength)

	props, err := readCoreProperties(archive)
	if err != nil {
		log.Warn().Err(err).Str("file_name", fileName).Msg("could not extract document properties")
	}
	for k, v := range props {
		res.Metadata[k] = v
	}

	res.Statistics["paragraph_count"] = body.paragraphs
	res.Statistics["table_count"] = body.tables
	res.Statistics["character_count"] = len([]rune(fullText))
	res.Statistics["word_count"] = h.words.CountWords(fullText)
	return res, nil
}

func findZipEntry(archive *zip.Reader, name string) *zip.File {
	for _, f := range archive.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

type documentBody struct {
	parts      []string
	paragraphs int
	tables     int
}

// parseDocumentBody 流式解析 document.xml 中 body 的直接子元素
func parseDocumentBody(r io.Reader) (*documentBody, error) {
	dec := xml.NewDecoder(r)
	body := &documentBody{}
	inBody := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if !inBody {
				return nil, errors.New("document has no body")
			}
			return body, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !inBody {
				if t.Name.Local == "body" {
					inBody = true
				}
				continue
			}
			switch t.Name.Local {
			case "p":
				style, text, err := parseParagraph(dec)
				if err != nil {
					return nil, err
				}
				body.paragraphs++
				if strings.TrimSpace(text) == "" {
					continue
				}
				if heading, ok := headingName(style); ok {
					body.parts = append(body.parts, fmt.Sprintf("\n%s: %s\n", heading, text))
				} else {
					body.parts = append(body.parts, text)
				}
			case "tbl":
				rows, err := parseTable(dec)
				if err != nil {
					return nil, err
				}
				body.tables++
				body.parts = append(body.parts, renderTable(rows))
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if inBody && t.Name.Local == "body" {
				return body, nil
			}
		}
	}
}

// parseParagraph 读取到 </w:p> 为止，返回样式 ID 与文本
func parseParagraph(dec *xml.Decoder) (string, string, error) {
	var (
		style  string
		sb     strings.Builder
		inText bool
		depth  int
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "pStyle":
				style = attrValue(t, "val")
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		case xml.EndElement:
			if depth == 0 {
				return style, sb.String(), nil
			}
			depth--
			if t.Name.Local == "t" {
				inText = false
			}
		}
	}
}

// parseTable 读取到 </w:tbl> 为止，返回每行单元格文本
func parseTable(dec *xml.Decoder) ([][]string, error) {
	var (
		rows  [][]string
		cell  []string
		depth int
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tr":
				rows = append(rows, []string{})
				depth++
			case "tc":
				cell = []string{}
				depth++
			case "p":
				_, text, err := parseParagraph(dec)
				if err != nil {
					return nil, err
				}
				cell = append(cell, text)
			case "tbl":
				nested, err := parseTable(dec)
				if err != nil {
					return nil, err
				}
				for _, row := range nested {
					cell = append(cell, strings.Join(row, " "))
				}
			default:
				depth++
			}
		case xml.EndElement:
			if depth == 0 {
				return rows, nil
			}
			depth--
			if t.Name.Local == "tc" && len(rows) > 0 {
				text := strings.ReplaceAll(strings.TrimSpace(strings.Join(cell, "\n")), "\n", " ")
				rows[len(rows)-1] = append(rows[len(rows)-1], text)
			}
		}
	}
}

func renderTable(rows [][]string) string {
	lines := []string{"\n[TABLE]"}
	for _, row := range rows {
		lines = append(lines, strings.Join(row, " | "))
	}
	lines = append(lines, "[/TABLE]\n")
	return strings.Join(lines, "\n")
}

func headingName(styleID string) (string, bool) {
	m := headingStylePattern.FindStringSubmatch(strings.TrimSpace(styleID))
	if m == nil {
		return "", false
	}
	return "Heading " + m[1], true
}

func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

type coreProperties struct {
	Title          string `xml:"title"`
	Creator        string `xml:"creator"`
	Subject        string `xml:"subject"`
	Keywords       string `xml:"keywords"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
	LastModifiedBy string `xml:"lastModifiedBy"`
}

// readCoreProperties 读取 docProps/core.xml，缺失时返回空值
func readCoreProperties(archive *zip.Reader) (map[string]any, error) {
	f := findZipEntry(archive, "docProps/core.xml")
	if f == nil {
		return map[string]any{}, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var props coreProperties
	if err := xml.NewDecoder(rc).Decode(&props); err != nil {
		return nil, err
	}
	return map[string]any{
		"title":            props.Title,
		"author":           props.Creator,
		"subject":          props.Subject,
		"keywords":         props.Keywords,
		"created":          props.Created,
		"modified":         props.Modified,
		"last_modified_by": props.LastModifiedBy,
	}, nil
}
