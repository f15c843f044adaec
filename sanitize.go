package main

import (
	"regexp"
	"strings"
)

var (
	leadingFenceRE  = regexp.MustCompile("^```(?:sql)?[ \t]*\r?\n?")
	trailingFenceRE = regexp.MustCompile("\r?\n?```\\s*$")
)

// SanitizeSQL strips markdown code-fence artifacts from generated text,
// leaving raw SQL. Already-clean SQL passes through unchanged, so the
// function is idempotent. No syntax or semantic validation happens here;
// that is deferred to execution.
func SanitizeSQL(raw string) string {
	sql := strings.TrimSpace(raw)
	sql = leadingFenceRE.ReplaceAllString(sql, "")
	sql = trailingFenceRE.ReplaceAllString(sql, "")
	return strings.TrimSpace(sql)
}
