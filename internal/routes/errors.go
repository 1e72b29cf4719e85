package routes

import (
	"errors"
	"fmt"
)

// Class categorizes a rejected default-route operation.
type Class int

// Class constants
const (
	// ClassValidation indicates a malformed request, rejected before any
	// system call is made
	ClassValidation Class = iota
	// ClassInterfaceDown indicates the target interface is not currently up
	ClassInterfaceDown
	// ClassCellularLocked indicates a cellular uplink holds exclusive
	// default-route rights
	ClassCellularLocked
	// ClassApplyFailed indicates the OS rejected the route change
	ClassApplyFailed
)

// String returns a string representation of the error class
func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "Validation"
	case ClassInterfaceDown:
		return "InterfaceDown"
	case ClassCellularLocked:
		return "CellularLocked"
	case ClassApplyFailed:
		return "ApplyFailed"
	default:
		return "Unknown"
	}
}

// Error is a classified failure of a route operation.
type Error struct {
	Class     Class
	Interface string
	Cause     error
}

func (e *Error) Error() string {
	switch e.Class {
	case ClassInterfaceDown:
		return fmt.Sprintf("interface %s should be up", e.Interface)
	case ClassCellularLocked:
		return fmt.Sprintf("cellular %s is connected, the default gateway cannot be changed", e.Interface)
	case ClassApplyFailed:
		return fmt.Sprintf("failed to apply default route via %s: %v", e.Interface, e.Cause)
	default:
		return fmt.Sprintf("invalid request: %v", e.Cause)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ClassOf extracts the error class, defaulting to ClassApplyFailed for
// unclassified errors.
func ClassOf(err error) Class {
	var re *Error
	if errors.As(err, &re) {
		return re.Class
	}
	return ClassApplyFailed
}

// IsInterfaceDown reports whether the error rejects a down interface
func IsInterfaceDown(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Class == ClassInterfaceDown
}

// IsCellularLocked reports whether the error was caused by the cellular lock
func IsCellularLocked(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Class == ClassCellularLocked
}

// IsValidation reports whether the request was rejected before any system call
func IsValidation(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Class == ClassValidation
}

func errInterfaceDown(name string) *Error {
	return &Error{Class: ClassInterfaceDown, Interface: name}
}

func errCellularLocked(active string) *Error {
	return &Error{Class: ClassCellularLocked, Interface: active}
}

func errApplyFailed(iface string, cause error) *Error {
	return &Error{Class: ClassApplyFailed, Interface: iface, Cause: cause}
}

func errValidation(cause error) *Error {
	return &Error{Class: ClassValidation, Cause: cause}
}
