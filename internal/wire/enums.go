package wire

import "fmt"

type MapAsyncStatus uint32

const (
	MapAsyncStatusSuccess MapAsyncStatus = iota
	MapAsyncStatusInstanceDropped
	MapAsyncStatusError
	MapAsyncStatusAborted
	MapAsyncStatusUnknown
)

func (s MapAsyncStatus) String() string {
	return enumString(s, mapAsyncStatusStrings[:], "MapAsyncStatus")
}

var mapAsyncStatusStrings = [...]string{
	MapAsyncStatusSuccess:         "Success",
	MapAsyncStatusInstanceDropped: "InstanceDropped",
	MapAsyncStatusError:           "Error",
	MapAsyncStatusAborted:         "Aborted",
	MapAsyncStatusUnknown:         "Unknown",
}

type CreatePipelineAsyncStatus uint32

const (
	CreatePipelineAsyncStatusSuccess CreatePipelineAsyncStatus = iota
	CreatePipelineAsyncStatusInstanceDropped
	CreatePipelineAsyncStatusValidationError
	CreatePipelineAsyncStatusInternalError
)

func (s CreatePipelineAsyncStatus) String() string {
	return enumString(s, createPipelineAsyncStatusStrings[:], "CreatePipelineAsyncStatus")
}

var createPipelineAsyncStatusStrings = [...]string{
	CreatePipelineAsyncStatusSuccess:         "Success",
	CreatePipelineAsyncStatusInstanceDropped: "InstanceDropped",
	CreatePipelineAsyncStatusValidationError: "ValidationError",
	CreatePipelineAsyncStatusInternalError:   "InternalError",
}

type PopErrorScopeStatus uint32

const (
	PopErrorScopeStatusSuccess PopErrorScopeStatus = iota
	PopErrorScopeStatusInstanceDropped
	PopErrorScopeStatusEmptyStack
)

func (s PopErrorScopeStatus) String() string {
	return enumString(s, popErrorScopeStatusStrings[:], "PopErrorScopeStatus")
}

var popErrorScopeStatusStrings = [...]string{
	PopErrorScopeStatusSuccess:         "Success",
	PopErrorScopeStatusInstanceDropped: "InstanceDropped",
	PopErrorScopeStatusEmptyStack:      "EmptyStack",
}

type QueueWorkDoneStatus uint32

const (
	QueueWorkDoneStatusSuccess QueueWorkDoneStatus = iota
	QueueWorkDoneStatusInstanceDropped
	QueueWorkDoneStatusError
)

func (s QueueWorkDoneStatus) String() string {
	return enumString(s, queueWorkDoneStatusStrings[:], "QueueWorkDoneStatus")
}

var queueWorkDoneStatusStrings = [...]string{
	QueueWorkDoneStatusSuccess:         "Success",
	QueueWorkDoneStatusInstanceDropped: "InstanceDropped",
	QueueWorkDoneStatusError:           "Error",
}

type DeviceLostReason uint32

const (
	DeviceLostReasonUnknown DeviceLostReason = iota
	DeviceLostReasonDestroyed
	DeviceLostReasonInstanceDropped
	DeviceLostReasonFailedCreation
)

func (r DeviceLostReason) String() string {
	return enumString(r, deviceLostReasonStrings[:], "DeviceLostReason")
}

var deviceLostReasonStrings = [...]string{
	DeviceLostReasonUnknown:         "Unknown",
	DeviceLostReasonDestroyed:       "Destroyed",
	DeviceLostReasonInstanceDropped: "InstanceDropped",
	DeviceLostReasonFailedCreation:  "FailedCreation",
}

type ErrorType uint32

const (
	ErrorTypeNoError ErrorType = iota
	ErrorTypeValidation
	ErrorTypeOutOfMemory
	ErrorTypeInternal
	ErrorTypeUnknown
	ErrorTypeDeviceLost
)

func (t ErrorType) String() string {
	return enumString(t, errorTypeStrings[:], "ErrorType")
}

var errorTypeStrings = [...]string{
	ErrorTypeNoError:     "NoError",
	ErrorTypeValidation:  "Validation",
	ErrorTypeOutOfMemory: "OutOfMemory",
	ErrorTypeInternal:    "Internal",
	ErrorTypeUnknown:     "Unknown",
	ErrorTypeDeviceLost:  "DeviceLost",
}

type ErrorFilter uint32

const (
	ErrorFilterValidation ErrorFilter = iota
	ErrorFilterOutOfMemory
	ErrorFilterInternal
)

func (f ErrorFilter) String() string {
	return enumString(f, errorFilterStrings[:], "ErrorFilter")
}

// Matches reports whether errors of type t are captured by a scope with
// filter f.
func (f ErrorFilter) Matches(t ErrorType) bool {
	switch f {
	case ErrorFilterValidation:
		return t == ErrorTypeValidation
	case ErrorFilterOutOfMemory:
		return t == ErrorTypeOutOfMemory
	case ErrorFilterInternal:
		return t == ErrorTypeInternal
	}
	return false
}

var errorFilterStrings = [...]string{
	ErrorFilterValidation:  "Validation",
	ErrorFilterOutOfMemory: "OutOfMemory",
	ErrorFilterInternal:    "Internal",
}

type LoggingType uint32

const (
	LoggingTypeVerbose LoggingType = iota
	LoggingTypeInfo
	LoggingTypeWarning
	LoggingTypeError
)

func (t LoggingType) String() string {
	return enumString(t, loggingTypeStrings[:], "LoggingType")
}

var loggingTypeStrings = [...]string{
	LoggingTypeVerbose: "Verbose",
	LoggingTypeInfo:    "Info",
	LoggingTypeWarning: "Warning",
	LoggingTypeError:   "Error",
}

func enumString[T ~uint32](v T, names []string, typeName string) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", typeName, uint32(v))
}
