package allocator

import (
	"net/http"

	"github.com/evgenyq/kitesafari-booking/internal/model"
)

// Code identifies a failure class on the wire.  The set is a contract
// with the mini-app: precondition failures and race failures carry
// distinct codes because the caller's retry strategy differs (a race
// means "re-fetch and decide again", a precondition means "stop and tell
// the user").
type Code string

const (
	CodeValidation            Code = "VALIDATION_ERROR"
	CodeCabinNotFound         Code = "CABIN_NOT_FOUND"
	CodeCabinNotAvailable     Code = "CABIN_NOT_AVAILABLE"
	CodeCabinNotHalfAvailable Code = "CABIN_NOT_HALF_AVAILABLE"
	CodeRaceLost              Code = "RACE_CONDITION"
	CodeAuth                  Code = "AUTH_ERROR"
	CodeForbidden             Code = "FORBIDDEN"
	CodeCabinUpdate           Code = "CABIN_UPDATE_ERROR"
	CodeBookingCreate         Code = "BOOKING_CREATE_ERROR"
	CodeInternal              Code = "INTERNAL_ERROR"
)

// Failure is the typed rejection returned by the allocator.  It
// implements error so it can travel through normal error returns, and
// handlers unwrap it with errors.As to build the wire response.
// CurrentStatus is populated on precondition and race failures so the UI
// can explain what the cabin looks like now.
type Failure struct {
	Code          Code
	Message       string
	CurrentStatus model.CabinStatus
}

func (f *Failure) Error() string { return string(f.Code) + ": " + f.Message }

// HTTPStatus maps a failure class to the status code the booking endpoint
// responds with.
func (f *Failure) HTTPStatus() int {
	switch f.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeCabinNotFound:
		return http.StatusNotFound
	case CodeCabinNotAvailable, CodeCabinNotHalfAvailable, CodeRaceLost:
		return http.StatusConflict
	case CodeAuth:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func failValidation(msg string) *Failure {
	return &Failure{Code: CodeValidation, Message: msg}
}

func failNotFound() *Failure {
	return &Failure{Code: CodeCabinNotFound, Message: "cabin not found"}
}

func failNotAvailable(current model.CabinStatus) *Failure {
	return &Failure{Code: CodeCabinNotAvailable, Message: "cabin is not available", CurrentStatus: current}
}

func failNotHalfAvailable(current model.CabinStatus) *Failure {
	return &Failure{Code: CodeCabinNotHalfAvailable, Message: "cabin is not available for joining", CurrentStatus: current}
}

func failRaceLost(readStatus model.CabinStatus) *Failure {
	return &Failure{Code: CodeRaceLost, Message: "cabin was just booked by someone else", CurrentStatus: readStatus}
}

func failCabinUpdate() *Failure {
	return &Failure{Code: CodeCabinUpdate, Message: "failed to update cabin"}
}

func failBookingCreate() *Failure {
	return &Failure{Code: CodeBookingCreate, Message: "failed to record booking"}
}

func failInternal() *Failure {
	return &Failure{Code: CodeInternal, Message: "internal error"}
}
