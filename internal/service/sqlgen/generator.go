package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
)

const schemaHint = `Table: sales
  - id, customer_id, product_id, employee_id, quantity, total_amount, sale_date, city
Table: customers
  - id, name, email, city, country, created_at
Table: products
  - id, name, category, description, price, stock, created_at
Table: employees
  - id, first_name, last_name, email, position, region, hire_date`

const systemPrompt = `You are an SQL expert. Convert user input into SQL SELECT statements only.
Answer with the statement only.
Rules:
- Use only SELECT (no DELETE, UPDATE, etc.)
- 'neueste/r', 'letzte/r', 'aktuelle/r' → ORDER BY <date_field> DESC LIMIT 1
- 'älteste/r' → ORDER BY <date_field> ASC LIMIT 1
- 'letzten X' → ORDER BY <date_field> DESC LIMIT X
- 'wie viele' → SELECT COUNT(*) AS count ...
- 'am meisten gekauft/verkauft/beliebt':
   * customers → GROUP BY customer_id ORDER BY SUM(total_amount) DESC
   * products → GROUP BY product_id ORDER BY SUM(quantity) DESC LIMIT 1
- 'Top X' → ORDER BY SUM(...) DESC LIMIT X
{dialect}
Database schema:
{schema}`

var dialectHints = map[string]string{
	"sqlite": "Use SQLite date syntax: date('now'), date('now','-X days')",
	"mysql":  "Use MySQL date syntax: CURDATE(), NOW() - INTERVAL X DAY",
}

// ErrEmptyAnswer is returned when the model produced no statement.
var ErrEmptyAnswer = errors.New("model returned no SQL")

// Generator turns a natural-language question into one SQL statement.
type Generator struct {
	model    model.BaseChatModel
	template prompt.ChatTemplate
	dialect  string
}

// NewGenerator prompts m for statements in the dialect of driver
// ("sqlite3" or "mysql").
func NewGenerator(m model.BaseChatModel, driver string) *Generator {
	dialect := "mysql"
	if d := strings.ToLower(driver); d == "sqlite" || d == "sqlite3" {
		dialect = "sqlite"
	}
	return &Generator{
		model: m,
		template: prompt.FromMessages(schema.FString,
			schema.SystemMessage(systemPrompt),
			schema.UserMessage("{question}"),
		),
		dialect: dialect,
	}
}

// Generate asks the model and returns the cleaned statement. It does not
// check the statement for safety.
func (g *Generator) Generate(ctx context.Context, question string) (string, error) {
	messages, err := g.template.Format(ctx, map[string]any{
		"dialect":  dialectHints[g.dialect],
		"schema":   schemaHint,
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}

	answer, err := g.model.Generate(ctx, messages, model.WithTemperature(0), model.WithMaxTokens(maxTokens))
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}
	if answer == nil {
		return "", ErrEmptyAnswer
	}

	query := Clean(answer.Content, question)
	if g.dialect == "sqlite" {
		query = FixForSQLite(query)
	}
	if query == "" {
		return "", ErrEmptyAnswer
	}
	log.Debug().Str("question", question).Str("query", query).Msg("generated sql")
	return query, nil
}
