package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies a vendor error into the categories the dispatch
// policy cares about.
type ErrorKind string

const (
	KindUnauthorized       ErrorKind = "unauthorized"
	KindRateLimited        ErrorKind = "rate_limited"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindModelLoading       ErrorKind = "model_loading"
	KindTimeout            ErrorKind = "timeout"
	KindMalformed          ErrorKind = "malformed"
	KindUnknown            ErrorKind = "unknown"
)

// VendorError wraps provider errors with classification metadata.
type VendorError struct {
	Kind    ErrorKind
	Status  int
	Vendor  string
	Message string
	Err     error
}

func (e *VendorError) Error() string {
	if e == nil {
		return "vendor error"
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Vendor, e.Message, e.Kind)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error (kind=%s status=%d)", e.Vendor, e.Kind, e.Status)
}

func (e *VendorError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ClassifyStatus maps an HTTP status code to an error kind.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusServiceUnavailable:
		return KindServiceUnavailable
	case status == http.StatusBadRequest:
		return KindMalformed
	default:
		return KindUnknown
	}
}

// IsTransient reports whether an error is expected to resolve after a
// short wait. Only model-loading, rate-limit and 503 conditions qualify;
// every other failure is fatal and must not be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return false
	}
	var verr *VendorError
	if errors.As(err, &verr) {
		switch verr.Kind {
		case KindModelLoading, KindRateLimited, KindServiceUnavailable:
			return true
		}
	}
	return false
}
