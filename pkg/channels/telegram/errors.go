package telegram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tinyland-inc/telebridge/pkg/message"
)

// ErrUnsupported is matched by every capability gate rejection.
var ErrUnsupported = errors.New("operation not supported by telegram")

// ErrEmptyMessage is returned when a send compiles to zero platform requests.
var ErrEmptyMessage = errors.New("message has nothing telegram can send")

// UnsupportedError is returned for operations with no Bot API equivalent. No
// request is built or issued when it is returned.
type UnsupportedError struct {
	Operation Operation
	Reason    string
}

func (e *UnsupportedError) Error() string {
	return string(e.Operation) + ": " + e.Reason
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// PartialSendError reports a multi-request send that failed after delivering
// some of its messages. Delivered messages are not rolled back.
type PartialSendError struct {
	Sent   []string // composite ids delivered before the failure
	Method string   // Bot API method that failed
	Err    error
}

func (e *PartialSendError) Error() string {
	return fmt.Sprintf("telegram %s failed after %d message(s) were delivered [%s]: %v",
		e.Method, len(e.Sent), strings.Join(e.Sent, ", "), e.Err)
}

func (e *PartialSendError) Unwrap() error { return e.Err }

type Warning = message.Warning
