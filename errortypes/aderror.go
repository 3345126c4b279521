package errortypes

import "fmt"

// AdError is the structured error handed to a mediation host through its load callback.
//
// Domain identifies who produced Code: the adapter itself, or the ad network SDK it wraps.
// Codes are only unique within a domain.
type AdError struct {
	Domain  string `json:"domain"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	// Cause classifies the failure with one of the typed errors in this package. It is not
	// part of the host contract and is never serialized.
	Cause error `json:"-"`
}

// NewAdError builds an AdError. cause may be nil.
func NewAdError(domain string, code int, message string, cause error) *AdError {
	return &AdError{
		Domain:  domain,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func (err *AdError) Error() string {
	return fmt.Sprintf("%s (domain=%s, code=%d)", err.Message, err.Domain, err.Code)
}

func (err *AdError) Unwrap() error {
	return err.Cause
}

// Severity reports the severity of the underlying cause. AdErrors without a classified
// cause are fatal, since they always end a load attempt.
func (err *AdError) Severity() Severity {
	if c, ok := err.Cause.(Coder); ok {
		return c.Severity()
	}
	return SeverityFatal
}
