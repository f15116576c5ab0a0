package errors

// ErrorCode identifies an application error class in API responses
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED ErrorCode = 0
	ErrorCode_HTTP_OK     ErrorCode = 200

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_FORBIDDEN         ErrorCode = 1006
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1007

	// Meetings
	ErrorCode_MEETING_NOT_FOUND          ErrorCode = 3000
	ErrorCode_MEETING_INVALID_TRANSITION ErrorCode = 3001
	ErrorCode_MEETING_ALREADY_PROCESSED  ErrorCode = 3002
	ErrorCode_UPLOAD_INVALID_FILE        ErrorCode = 3003
	ErrorCode_UPLOAD_TOO_LARGE           ErrorCode = 3004
	ErrorCode_MEETING_PROCESSING         ErrorCode = 3005
	ErrorCode_MEETING_NOT_COMPLETED      ErrorCode = 3006

	// Tasks
	ErrorCode_TASK_NOT_FOUND ErrorCode = 4000

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 6000
	ErrorCode_INTEGRATION_QUEUE_FAILED   ErrorCode = 6001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:                "UNSPECIFIED",
	ErrorCode_HTTP_OK:                    "HTTP_OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:             "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:          "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:                  "FORBIDDEN",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_MEETING_NOT_FOUND:          "MEETING_NOT_FOUND",
	ErrorCode_MEETING_INVALID_TRANSITION: "MEETING_INVALID_TRANSITION",
	ErrorCode_MEETING_ALREADY_PROCESSED:  "MEETING_ALREADY_PROCESSED",
	ErrorCode_UPLOAD_INVALID_FILE:        "UPLOAD_INVALID_FILE",
	ErrorCode_UPLOAD_TOO_LARGE:           "UPLOAD_TOO_LARGE",
	ErrorCode_MEETING_PROCESSING:         "MEETING_PROCESSING",
	ErrorCode_MEETING_NOT_COMPLETED:      "MEETING_NOT_COMPLETED",
	ErrorCode_TASK_NOT_FOUND:             "TASK_NOT_FOUND",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_QUEUE_FAILED:   "INTEGRATION_QUEUE_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
