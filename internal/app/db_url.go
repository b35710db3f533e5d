package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL prepares a URL for lib/pq. The pgx-only
// disable_prepared_binary_result flag is dropped because lib/pq forwards
// unknown keys to the server as runtime parameters.
func normalizeDBURL(raw string, binaryParameters bool) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed == nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	query.Del("disable_prepared_binary_result")
	if binaryParameters && query.Get("binary_parameters") == "" {
		query.Set("binary_parameters", "yes")
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}

const maxTracedQueryLength = 512

// traceQuery collapses whitespace and caps the statement recorded on DB spans.
func traceQuery(query string) string {
	normalized := strings.TrimSuffix(strings.Join(strings.Fields(query), " "), ";")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
