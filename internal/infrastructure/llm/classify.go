package llm

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/kirillkom/summarizer/internal/core/domain"
	"github.com/kirillkom/summarizer/internal/infrastructure/resilience"
)

// StatusFunc extracts the HTTP status a provider SDK attached to err.
type StatusFunc func(err error) (int, bool)

// Classifier builds a resilience classifier for one provider. Throttling,
// timeouts and 5xx responses are retryable. Other 4xx answers are permanent
// and do not count against the breaker.
func Classifier(status StatusFunc) resilience.ErrorClassifier {
	return func(err error) resilience.ErrorClassification {
		if err == nil {
			return resilience.ErrorClassification{}
		}
		if errors.Is(err, context.Canceled) {
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		if resilience.IsCircuitOpen(err) {
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
		if status != nil {
			if code, ok := status(err); ok {
				retryable := IsRetryableStatus(code)
				return resilience.ErrorClassification{Retryable: retryable, RecordFailure: retryable}
			}
		}

		var netErr net.Error
		if errors.As(err, &netErr) {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}
}

func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// WrapTemporary marks transient provider failures with domain.ErrTemporary so
// callers can tell an outage from a rejected request.
func WrapTemporary(operation string, err error, classify resilience.ErrorClassifier) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classify(err).Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
