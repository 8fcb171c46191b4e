package common

import (
	"errors"
	"net/http"
)

// Fixed messages of the public error contract.
const (
	MsgInvalidInput       = "Invalid input data."
	MsgNotAuthorized      = "Not authorized. Invalid or missing token."
	MsgInvalidCredentials = "Invalid credentials! Please check your email and password."
	MsgResourceNotFound   = "Resource not found."
	MsgInternalError      = "An unexpected internal server error occurred."
)

var (
	ErrNotFound     = errors.New("requested resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrInternal     = errors.New("internal server error")
)

// StatusCoder lets a failure declare the HTTP status it should map to.
// The error mapper checks for it after the specific branches; anything
// else defaults to 500.
type StatusCoder interface {
	StatusCode() int
}

// ValidationError carries the field -> messages map produced by request
// validators. It propagates unmodified into the error envelope.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string { return "validation failed" }

func (e *ValidationError) StatusCode() int { return http.StatusUnprocessableEntity }

// NotFoundError is a service-level lookup miss with a specific message,
// e.g. "Associate with id 999 not found". Route misses use the bare
// ErrNotFound sentinel instead.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// AuthError is an authentication failure with a fixed caller-facing
// message (bad credentials, revoked token, ...).
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) StatusCode() int { return http.StatusUnauthorized }

// RequestError is a failure that declares its own HTTP status, e.g. a
// body that is not valid JSON (400) or a method miss (405).
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) StatusCode() int { return e.Status }
