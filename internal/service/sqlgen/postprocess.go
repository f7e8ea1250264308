package sqlgen

import (
	"regexp"
	"strings"
)

var (
	fencePattern     = regexp.MustCompile("(?i)```(?:sql)?")
	lineBreakPattern = regexp.MustCompile(`[\r\n]+`)
	curdatePattern   = regexp.MustCompile(`(?i)CURDATE\(\)`)
	intervalPattern  = regexp.MustCompile(`(?i)NOW\(\)\s*-\s*INTERVAL\s+(\d+)\s+DAY`)
	gluedPattern     = regexp.MustCompile(`\b(AS|FROM|WHERE)([a-z_])`)
	groupByPattern   = regexp.MustCompile(`(?i)GROUPBY`)
	orderByPattern   = regexp.MustCompile(`(?i)ORDERBY`)
	descLimitPattern = regexp.MustCompile(`(?i)DESC(LIMIT)`)
	unsafePattern    = regexp.MustCompile(`(?i)\b(delete|drop|update|insert|alter|truncate|replace|attach|pragma)\b|chat_snapshots`)
	selectAllPattern = regexp.MustCompile(`(?i)^select \* from (sales|customers|products|employees)$`)
)

// Clean strips markdown fences, line breaks and statement terminators from
// a model answer. Questions asking for the "first" entry get LIMIT 1 unless
// the statement already limits its rows.
func Clean(raw, question string) string {
	q := fencePattern.ReplaceAllString(raw, "")
	q = lineBreakPattern.ReplaceAllString(q, " ")
	q = strings.ReplaceAll(q, ";", "")
	q = strings.TrimSpace(q)
	if strings.Contains(strings.ToLower(question), "first") && !strings.Contains(strings.ToLower(q), "limit") {
		q += " LIMIT 1"
	}
	return q
}

// FixForSQLite rewrites MySQL date functions into SQLite syntax and
// separates keywords the model glued to the following word.
func FixForSQLite(q string) string {
	q = curdatePattern.ReplaceAllString(q, "date('now')")
	q = intervalPattern.ReplaceAllString(q, "date('now','-${1} days')")
	q = gluedPattern.ReplaceAllString(q, "${1} ${2}")
	q = groupByPattern.ReplaceAllString(q, "GROUP BY")
	q = orderByPattern.ReplaceAllString(q, "ORDER BY")
	q = descLimitPattern.ReplaceAllString(q, "DESC ${1}")
	return strings.TrimSpace(q)
}

// IsSafe accepts read-only SELECT statements that stay away from the chat
// history table.
func IsSafe(q string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(q))
	if !strings.HasPrefix(cleaned, "select") {
		return false
	}
	return !unsafePattern.MatchString(cleaned)
}

// IsSelectAll reports whether q dumps a whole business table without any
// filter.
func IsSelectAll(q string) bool {
	return selectAllPattern.MatchString(strings.Join(strings.Fields(q), " "))
}
