package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
	ErrCodeExternalService    ErrorCode = "COMMON_011"
)

// Acquisition Error Codes — failures while fetching one of the four analysis
// feeds (demographics, competitors, cofounders, investors).
const (
	// ErrCodeAcqNetwork is a transport-level failure: DNS, dial, TLS, or a
	// connection dropped mid-response. Never retried by the fetcher.
	ErrCodeAcqNetwork ErrorCode = "ACQ_001"

	// ErrCodeAcqRateLimited is an HTTP 429 or a textual rate-limit marker in
	// the response body. The only code the fetcher retries with backoff.
	ErrCodeAcqRateLimited ErrorCode = "ACQ_002"

	// ErrCodeAcqUpstream is a non-2xx, non-429 response from an analysis
	// endpoint. Surfaced immediately without retry.
	ErrCodeAcqUpstream ErrorCode = "ACQ_003"

	// ErrCodeAcqDecode is a malformed or unexpected payload shape.
	ErrCodeAcqDecode ErrorCode = "ACQ_004"

	// ErrCodeAcqIdeaTooShort rejects idea strings shorter than the minimum.
	ErrCodeAcqIdeaTooShort ErrorCode = "ACQ_005"

	// ErrCodeAcqSuperseded marks a write attempt from a run that has been
	// replaced by a newer submission.
	ErrCodeAcqSuperseded ErrorCode = "ACQ_006"
)

// Record Error Codes
const (
	// ErrCodeRecordMissingCoordinates marks a record excluded from spatial
	// rendering; the record itself stays in the raw payload.
	ErrCodeRecordMissingCoordinates ErrorCode = "REC_001"

	// ErrCodeRecordInvalidCoordinates marks a coordinate pair outside WGS84 range.
	ErrCodeRecordInvalidCoordinates ErrorCode = "REC_002"
)

// Selection Error Codes
const (
	ErrCodeSelectionEmpty   ErrorCode = "SEL_001"
	ErrCodeSelectionInvalid ErrorCode = "SEL_002"
)

// Aliases used at call sites for brevity.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeAcqNetwork:      http.StatusBadGateway,
	ErrCodeAcqRateLimited:  http.StatusTooManyRequests,
	ErrCodeAcqUpstream:     http.StatusBadGateway,
	ErrCodeAcqDecode:       http.StatusBadGateway,
	ErrCodeAcqIdeaTooShort: http.StatusBadRequest,
	ErrCodeAcqSuperseded:   http.StatusConflict,

	ErrCodeRecordMissingCoordinates: http.StatusUnprocessableEntity,
	ErrCodeRecordInvalidCoordinates: http.StatusUnprocessableEntity,

	ErrCodeSelectionEmpty:   http.StatusNotFound,
	ErrCodeSelectionInvalid: http.StatusBadRequest,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
// Unknown codes map to 500.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientErrorCode reports whether the code maps to a 4xx HTTP status.
func IsClientErrorCode(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerErrorCode reports whether the code maps to a 5xx HTTP status.
func IsServerErrorCode(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500
}

// rateLimitMarkers are the textual signals treated as a throttling response
// when the upstream does not use a clean HTTP 429.
var rateLimitMarkers = []string{
	"rate limit",
	"rate-limit",
	"too many requests",
}

// ContainsRateLimitMarker reports whether s carries a textual rate-limit
// signal. Matching is case-insensitive.
func ContainsRateLimitMarker(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range rateLimitMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
