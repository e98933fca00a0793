package metrics

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// UUID pattern for endpoint normalization
	uuidPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	// Post ids are path-like (lang/series/slug), so blog paths collapse to one label
	blogPostPattern = regexp.MustCompile(`^/blog/.+$`)
)

// RecordExternalAPICall records external API call metrics
func (m *Metrics) RecordExternalAPICall(endpoint, method string, statusCode int, duration time.Duration, err error) {
	m.safeExecute("RecordExternalAPICall", func() {
		endpoint = normalizeEndpoint(endpoint)
		status := strconv.Itoa(statusCode)

		m.ExternalAPIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
		m.ExternalAPIRequestDuration.WithLabelValues(endpoint, status).Observe(duration.Seconds())

		if err != nil || statusCode >= 400 {
			m.ExternalAPIErrors.WithLabelValues(endpoint, getErrorType(statusCode, err)).Inc()
		}
	})
}

// normalizeEndpoint converts concrete ids to templates
// Example: /blog/ko/weekly/250823/ -> /blog/{post}
func normalizeEndpoint(endpoint string) string {
	endpoint = uuidPattern.ReplaceAllString(endpoint, "{id}")
	return blogPostPattern.ReplaceAllString(endpoint, "/blog/{post}")
}

// getErrorType categorizes error types based on status code and error
func getErrorType(statusCode int, err error) string {
	switch {
	case statusCode == 400:
		return "bad_request"
	case statusCode == 401:
		return "unauthorized"
	case statusCode == 403:
		return "forbidden"
	case statusCode == 404:
		return "not_found"
	case statusCode == 408:
		return "request_timeout"
	case statusCode == 429:
		return "too_many_requests"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode == 500:
		return "internal_server_error"
	case statusCode == 502:
		return "bad_gateway"
	case statusCode == 503:
		return "service_unavailable"
	case statusCode == 504:
		return "gateway_timeout"
	case statusCode >= 500 && statusCode < 600:
		return "server_error"
	}

	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "connection refused"):
			return "connection_refused"
		case strings.Contains(msg, "no such host"):
			return "dns_error"
		case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
			return "timeout"
		case strings.Contains(msg, "EOF"), strings.Contains(msg, "connection reset"):
			return "connection_reset"
		case strings.Contains(msg, "TLS"), strings.Contains(msg, "certificate"):
			return "tls_error"
		case strings.Contains(msg, "empty"):
			return "empty_response"
		}
		return "network_error"
	}

	return "unknown"
}
