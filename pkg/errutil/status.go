package errutil

import (
	"errors"
	"net/http"
)

type CoreStatus string

const (
	StatusUnknown                CoreStatus = "unknown"
	StatusInternal               CoreStatus = "internal"
	StatusBadRequest             CoreStatus = "bad_request"
	StatusValidationFailed       CoreStatus = "validation_failed"
	StatusUnauthorized           CoreStatus = "unauthorized"
	StatusForbidden              CoreStatus = "forbidden"
	StatusNotFound               CoreStatus = "not_found"
	StatusConflict               CoreStatus = "conflict"
	StatusUnprocessableEntity    CoreStatus = "unprocessable_entity"
	StatusDependencyNotSatisfied CoreStatus = "dependency_not_satisfied"
	StatusUnsupportedMediaType   CoreStatus = "unsupported_media_type"
	StatusTooManyRequests        CoreStatus = "too_many_requests"
	StatusClientClosedRequest    CoreStatus = "client_closed_request"
	StatusTimeout                CoreStatus = "timeout"
	StatusNotImplemented         CoreStatus = "not_implemented"
	StatusBadGateway             CoreStatus = "bad_gateway"
	StatusServiceUnavailable     CoreStatus = "service_unavailable"
	StatusGatewayTimeout         CoreStatus = "gateway_timeout"
)

// HTTPStatus converts the CoreStatus to the HTTP status code returned to clients.
func (s CoreStatus) HTTPStatus() int {
	switch s {
	case StatusBadRequest, StatusValidationFailed:
		return http.StatusBadRequest
	case StatusUnauthorized:
		return http.StatusUnauthorized
	case StatusForbidden:
		return http.StatusForbidden
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConflict:
		return http.StatusConflict
	case StatusUnprocessableEntity, StatusDependencyNotSatisfied:
		return http.StatusUnprocessableEntity
	case StatusUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case StatusTooManyRequests:
		return http.StatusTooManyRequests
	case StatusClientClosedRequest:
		return 499
	case StatusTimeout:
		return http.StatusRequestTimeout
	case StatusNotImplemented:
		return http.StatusNotImplemented
	case StatusBadGateway:
		return http.StatusBadGateway
	case StatusServiceUnavailable:
		return http.StatusServiceUnavailable
	case StatusGatewayTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// StatusError is implemented by every error that knows its CoreStatus.
type StatusError interface {
	error
	Status() CoreStatus
}

// StatusOf walks the error chain and returns the first CoreStatus found,
// StatusInternal when none is present.
func StatusOf(err error) CoreStatus {
	if err == nil {
		return ""
	}
	var se StatusError
	if errors.As(err, &se) {
		return se.Status()
	}
	return StatusInternal
}

// Is reports whether err carries the given status.
func Is(err error, status CoreStatus) bool {
	return err != nil && StatusOf(err) == status
}
