package axis360

import (
	"errors"
	"fmt"
)

// ErrTransport wraps failures to complete an exchange with the vendor.
var ErrTransport = errors.New("Axis 360 transport failure")

var ErrNoPatron = errors.New("patron is required")

// VendorError is a response the vendor answered but did not accept.
type VendorError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *VendorError) Error() string {
	s := fmt.Sprintf("Axis 360 %s failed: HTTP %d", e.Op, e.StatusCode)
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}

func newVendorError(op string, statusCode int, body []byte) *VendorError {
	msg, _ := vendorErrorMessage(body)
	return &VendorError{Op: op, StatusCode: statusCode, Message: msg}
}
