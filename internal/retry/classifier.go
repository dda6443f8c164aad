package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// StatusCoder is implemented by HTTP API errors that carry a response status.
type StatusCoder interface {
	HTTPStatus() int
}

// HTTPErrorClassifier treats rate limiting, server errors and network
// failures as transient.
type HTTPErrorClassifier struct{}

// NewHTTPErrorClassifier creates a new HTTP error classifier.
func NewHTTPErrorClassifier() *HTTPErrorClassifier {
	return &HTTPErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *HTTPErrorClassifier) IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		status := sc.HTTPStatus()
		return status == http.StatusTooManyRequests ||
			status == http.StatusRequestTimeout ||
			status >= 500
	}

	return isNetworkError(err)
}

// PostgreSQL error classes that indicate a condition the server recovers from.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
var transientPgClasses = []string{
	"08", // connection exception
	"53", // insufficient resources
	"57", // operator intervention
}

var transientPgCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// PostgreSQLErrorClassifier implements ErrorClassifier for PostgreSQL-specific errors.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if transientPgCodes[pgErr.Code] {
			return true
		}
		for _, class := range transientPgClasses {
			if strings.HasPrefix(pgErr.Code, class) {
				return true
			}
		}
		return false
	}

	return isNetworkError(err) || isConnectionMessage(err)
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH)
}

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
}

func isConnectionMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
