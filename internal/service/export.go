package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cogniverse/internal/model/conversation"
)

// ExportFormat 导出格式
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportTXT  ExportFormat = "txt"
)

// ContentType 导出文件的 HTTP Content-Type
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportJSON:
		return "application/json; charset=utf-8"
	case ExportCSV:
		return "text/csv; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseExportFormat 大小写不敏感
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportJSON, ExportCSV, ExportTXT:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedExportFormat, s)
	}
}

type exportInfo struct {
	ExportedAt  string `json:"exported_at"`
	Application string `json:"application"`
	Version     string `json:"version"`
}

type exportDocument struct {
	ExportInfo   exportInfo          `json:"export_info"`
	Conversation conversation.Record `json:"conversation"`
}

// ExportConversation id 为空时导出当前对话
func (s *ConversationStore) ExportConversation(ctx context.Context, id, format string) ([]byte, error) {
	var conv *conversation.Conversation
	if id == "" {
		conv = s.GetCurrentConversation(ctx)
	} else {
		conv = s.conversations[id]
	}
	if conv == nil {
		return nil, ErrNoConversation
	}

	f, err := ParseExportFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case ExportJSON:
		return s.exportJSON(conv)
	case ExportCSV:
		return exportCSV(conv)
	default:
		return exportText(conv), nil
	}
}

func (s *ConversationStore) exportJSON(conv *conversation.Conversation) ([]byte, error) {
	doc := exportDocument{
		ExportInfo: exportInfo{
			ExportedAt:  nowFunc().Format(time.RFC3339),
			Application: s.app.Name,
			Version:     s.app.Version,
		},
		Conversation: conv.ToRecord(),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func exportCSV(conv *conversation.Conversation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	rows := [][]string{{"Timestamp", "Role", "Content", "Model Used"}}
	for _, m := range conv.Messages {
		model := m.ModelUsed
		if model == "" {
			model = "N/A"
		}
		rows = append(rows, []string{
			m.Timestamp.Format(conversation.TimeLayout),
			string(m.Role),
			strings.ReplaceAll(m.Content, "\n", " "),
			model,
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("encode csv export: %w", err)
	}
	return buf.Bytes(), nil
}

func exportText(conv *conversation.Conversation) []byte {
	lines := []string{
		"Conversation: " + conv.Title,
		"Created: " + conv.CreatedAt.Format(time.DateTime),
		fmt.Sprintf("Messages: %d", len(conv.Messages)),
		strings.Repeat("=", 50),
		"",
	}
	for _, m := range conv.Messages {
		who := "AI"
		if m.Role == conversation.RoleUser {
			who = "You"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format(time.TimeOnly), who, m.Content), "")
	}
	return []byte(strings.Join(lines, "\n"))
}
