package ask

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"querychat/internal/backend"
	"querychat/internal/dialog"
	"querychat/internal/metrics"
	"querychat/internal/service/sqlgen"
	"querychat/internal/table"
)

const (
	nullCell       = "—"
	unclearRequest = "⚠️ Hinweis:\n❌ Ich konnte deine Eingabe nicht verstehen.\nFormuliere deine Eingabe klarer."
)

// Error is a request failure reported back to the caller as detail text.
type Error struct {
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

// Unwrap presents the failure as the 400 answer the HTTP endpoint would
// send, so in-process callers can treat both the same way.
func (e *Error) Unwrap() error {
	return &backend.Error{Status: http.StatusBadRequest, Detail: e.Detail}
}

// Generator produces one SQL statement for a question.
type Generator interface {
	Generate(ctx context.Context, question string) (string, error)
}

// Service answers questions by generating SQL, executing it and rendering
// the rows as an HTML table.
type Service struct {
	db  *sql.DB
	gen Generator
}

var _ backend.QueryService = (*Service)(nil)

func NewService(db *sql.DB, gen Generator) *Service {
	return &Service{db: db, gen: gen}
}

// Ask runs the whole pipeline for question. Every failure is an *Error.
func (s *Service) Ask(ctx context.Context, question string) (*backend.Response, error) {
	resp, status, err := s.ask(ctx, question)
	metrics.AskRequestsTotal.WithLabelValues(status).Inc()
	return resp, err
}

func (s *Service) ask(ctx context.Context, question string) (*backend.Response, string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, "invalid", &Error{Detail: "query must not be empty"}
	}

	query, err := s.gen.Generate(ctx, question)
	if err != nil {
		log.Error().Err(err).Str("question", question).Msg("sql generation failed")
		return nil, "generation_error", &Error{Detail: fmt.Sprintf("SQL generation error: %v", err)}
	}
	if !sqlgen.IsSafe(query) {
		log.Warn().Str("query", query).Msg("rejected unsafe query")
		return nil, "unsafe", &Error{Detail: "Generated query is unsafe: " + query}
	}
	if sqlgen.IsSelectAll(query) && !dialog.ContainsWord(question, "alle", "all") {
		return nil, "unclear", &Error{Detail: unclearRequest}
	}

	rendered, err := s.run(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("sql execution failed")
		return nil, "execution_error", &Error{Detail: fmt.Sprintf("SQL execution error: %v", err)}
	}
	return &backend.Response{Query: query, ResultsHTML: rendered}, "ok", nil
}

func (s *Service) run(ctx context.Context, query string) (string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", err
	}

	var records [][]string
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return "", err
		}
		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = cellText(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return RenderTable(columns, records), nil
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return nullCell
	case []byte:
		return string(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(t)
	}
}

// RenderTable builds the HTML table for a result set. An empty result is
// the no-results marker.
func RenderTable(columns []string, records [][]string) string {
	if len(records) == 0 {
		return table.NoResultsMarker
	}
	var b strings.Builder
	b.WriteString(`<table border="1" cellpadding="5" cellspacing="0" style="border-collapse: collapse;">`)
	b.WriteString("<thead><tr>")
	for _, col := range columns {
		b.WriteString("<th>" + html.EscapeString(col) + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, record := range records {
		b.WriteString("<tr>")
		for i := range columns {
			cell := nullCell
			if i < len(record) {
				cell = record[i]
			}
			b.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}
