package gerror

import (
	"errors"
)

const (
	ErrCodeInternal         Code = "Internal"
	ErrCodeValidationFailed Code = "ValidationFailed"
	ErrCodeKeyNotFound      Code = "KeyNotFound"
	ErrCodeAlreadyStarted   Code = "AlreadyStarted"
	ErrCodeStartFailed      Code = "StartFailed"
	ErrCodeStopFailed       Code = "StopFailed"
	ErrCodeObjectDisposed   Code = "ObjectDisposed"
	ErrCodeTimeout          Code = "Timeout"
	ErrCodeQueueClosed      Code = "QueueClosed"
)

// ToError locates an Error in the provided error chain and returns it if it
// matches the provided code. Otherwise, returns nil.
func ToError(err error, code Code) *Error {
	if err == nil {
		return nil
	}
	var gErr Error
	if errors.As(err, &gErr) && gErr.Code() == code {
		return &gErr
	}
	return nil
}

func NewErrInternal(message string, err error) Error {
	return NewError(message, AudienceInternal, ErrCodeInternal, err)
}

func ToInternal(err error) *Error {
	return ToError(err, ErrCodeInternal)
}

func IsInternal(err error) bool {
	return ToInternal(err) != nil
}

func NewErrValidationFailed(message string) Error {
	return NewError(message, AudienceExternal, ErrCodeValidationFailed, nil)
}

func ToValidationFailed(err error) *Error {
	return ToError(err, ErrCodeValidationFailed)
}

func IsValidationFailed(err error) bool {
	return ToValidationFailed(err) != nil
}

// NewErrKeyNotFound reports a lookup miss in an EntryWriterMap or SwitchSet
// keyed collection.
func NewErrKeyNotFound(message string) Error {
	return NewError(message, AudienceInternal, ErrCodeKeyNotFound, nil)
}

func ToKeyNotFound(err error) *Error {
	return ToError(err, ErrCodeKeyNotFound)
}

func IsKeyNotFound(err error) bool {
	return ToKeyNotFound(err) != nil
}

// NewErrAlreadyStarted reports a call to Start on a Machine whose current
// state does not accept a start (Stopping or FailedToStop). Start on a
// Machine that is Starting or Restarting returns nil instead, and Start on
// a Started Machine restarts it.
func NewErrAlreadyStarted(subject string) Error {
	return NewError(subject+" is already started", AudienceInternal, ErrCodeAlreadyStarted, nil)
}

func ToAlreadyStarted(err error) *Error {
	return ToError(err, ErrCodeAlreadyStarted)
}

func IsAlreadyStarted(err error) bool {
	return ToAlreadyStarted(err) != nil
}

// NewErrStartFailed wraps the error a component's start function returned,
// carrying the component to FailedToStart.
func NewErrStartFailed(subject string, err error) Error {
	return NewError(subject+" failed to start", AudienceInternal, ErrCodeStartFailed, err)
}

func ToStartFailed(err error) *Error {
	return ToError(err, ErrCodeStartFailed)
}

func IsStartFailed(err error) bool {
	return ToStartFailed(err) != nil
}

// NewErrStopFailed wraps one or more errors returned by a component's stop
// path, carrying the component to FailedToStop.
func NewErrStopFailed(subject string, err error) Error {
	return NewError(subject+" failed to stop", AudienceInternal, ErrCodeStopFailed, err)
}

func ToStopFailed(err error) *Error {
	return ToError(err, ErrCodeStopFailed)
}

func IsStopFailed(err error) bool {
	return ToStopFailed(err) != nil
}

// NewErrObjectDisposed reports use of a Disposed component.
func NewErrObjectDisposed(subject string) Error {
	return NewError(subject+" has been disposed", AudienceInternal, ErrCodeObjectDisposed, nil)
}

func ToObjectDisposed(err error) *Error {
	return ToError(err, ErrCodeObjectDisposed)
}

func IsObjectDisposed(err error) bool {
	return ToObjectDisposed(err) != nil
}

// NewErrTimeout reports a bounded wait exceeding its deadline.
func NewErrTimeout(description string) Error {
	return NewError("timeout: "+description, AudienceInternal, ErrCodeTimeout, nil)
}

func ToTimeout(err error) *Error {
	return ToError(err, ErrCodeTimeout)
}

func IsTimeout(err error) bool {
	return ToTimeout(err) != nil
}

// NewErrQueueClosed reports a write attempted against a stopped
// BackgroundPipeline's bounded queue.
func NewErrQueueClosed() Error {
	return NewError("queue is closed", AudienceInternal, ErrCodeQueueClosed, nil)
}

func ToQueueClosed(err error) *Error {
	return ToError(err, ErrCodeQueueClosed)
}

func IsQueueClosed(err error) bool {
	return ToQueueClosed(err) != nil
}
