package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 12000-12999: Problem & Test data errors
// 13000-13999: Submission & Judge errors
//
// Judge verdicts (Accepted, WrongAnswer, ...) are never error codes. They are
// outcomes carried in results. Codes here cover the other two failure
// families: caller/config errors (deterministic, must not be redelivered)
// and infrastructure errors (retryable at the queue layer).
const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Database errors (10100-10199)
	DatabaseError  ErrorCode = 10100
	RecordNotFound ErrorCode = 10101

	// Cache errors (10200-10299)
	CacheError     ErrorCode = 10200
	CacheSetFailed ErrorCode = 10202

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	RequiredFieldEmpty ErrorCode = 10303

	// Object storage errors (10400-10499)
	StorageError       ErrorCode = 10400
	SourceHashMismatch ErrorCode = 10401
	SourceDecodeFailed ErrorCode = 10402

	// ========== Problem & Test Data Errors (12000-12999) ==========

	// Problem basic (12000-12099)
	ProblemNotFound   ErrorCode = 12000
	FunctionSpecEmpty ErrorCode = 12001

	// Test cases (12100-12199)
	TestCaseNotFound ErrorCode = 12100
	InputMalformed   ErrorCode = 12101

	// Function specs (12200-12299)
	TypeNotSupported ErrorCode = 12200

	// ========== Submission & Judge Errors (13000-13999) ==========

	// Submission (13000-13099)
	SubmissionNotFound   ErrorCode = 13000
	CodeTooLarge         ErrorCode = 13002
	LanguageNotSupported ErrorCode = 13003

	// Judge (13100-13199)
	JudgeQueueFull   ErrorCode = 13100
	JudgeSystemError ErrorCode = 13101
	JudgeCancelled   ErrorCode = 13102
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Database
	DatabaseError:  "Database operation failed",
	RecordNotFound: "Record not found in database",

	// Cache
	CacheError:     "Cache operation failed",
	CacheSetFailed: "Failed to set cache",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	RequiredFieldEmpty: "Required field is empty",

	// Object storage
	StorageError:       "Object storage operation failed",
	SourceHashMismatch: "Source content hash mismatch",
	SourceDecodeFailed: "Failed to decode source content",

	// Problem
	ProblemNotFound:   "Problem not found",
	FunctionSpecEmpty: "Problem has no function specification",

	// Test cases
	TestCaseNotFound: "No test cases found for problem",
	InputMalformed:   "Test case input is malformed",

	// Function specs
	TypeNotSupported: "Parameter or return type not supported",

	// Submission
	SubmissionNotFound:   "Submission not found",
	CodeTooLarge:         "Code is too large",
	LanguageNotSupported: "Programming language not supported",

	// Judge
	JudgeQueueFull:   "Judge queue is full, please try again later",
	JudgeSystemError: "Judge system error",
	JudgeCancelled:   "Judge evaluation was cancelled",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == RecordNotFound, c == ProblemNotFound,
		c == TestCaseNotFound, c == SubmissionNotFound:
		return 404
	case c == TooManyRequests:
		return 429
	case c == ServiceUnavailable, c == JudgeQueueFull:
		return 503
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams, c == InputMalformed, c == TypeNotSupported,
		c == LanguageNotSupported, c == FunctionSpecEmpty, c == SourceHashMismatch:
		return 400
	case c == CodeTooLarge:
		return 413
	default:
		return 500
	}
}

// Retryable reports whether a judge run that failed with this code may be
// redelivered. Caller/config errors are deterministic for a given problem
// definition, so redelivery would fail the same way forever.
func (c ErrorCode) Retryable() bool {
	switch c {
	case DatabaseError, CacheError, CacheSetFailed, StorageError,
		JudgeSystemError, JudgeQueueFull, ServiceUnavailable, Timeout,
		InternalServerError:
		return true
	default:
		return false
	}
}
