package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/sakibbengal/Bengal-Boats-sub000/pkg/errors"
)

// downstreamError covers both error bodies our services emit: the httputil
// envelope {"error":{"code","message"}} and the intake envelope
// {"success":false,"message"}.
type downstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// maps it to an AppError named after service.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Upstream(
			fmt.Sprintf("%s returned status %d", service, resp.StatusCode),
			fmt.Errorf("read body: %w", err),
		)
	}

	code, message := "", string(body)
	var de downstreamError
	if json.Unmarshal(body, &de) == nil {
		switch {
		case de.Error != nil:
			code, message = de.Error.Code, de.Error.Message
		case de.Message != "":
			message = de.Message
		}
	}

	return mapStatus(resp.StatusCode, code, fmt.Sprintf("%s: %s", service, message), service)
}

func mapStatus(status int, code, message, service string) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(message)
	case http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound, Err: apperrors.ErrNotFound}
	case http.StatusConflict:
		return apperrors.Conflict(message)
	case http.StatusGone:
		return apperrors.Gone(message)
	case http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(message)
	}
	if code == "" {
		code = http.StatusText(status)
	}
	return apperrors.Upstream(message, fmt.Errorf("%s status %d (%s)", service, status, code))
}

// IsClientError reports whether status is a 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
