package command

import (
	"errors"
	"fmt"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/haxfootball-room/internal/domain/game"
)

// Messages for failures that carry no user-facing text of their own.
const (
	MessageSnapCooldown = "Snap cooldown active, try again shortly"
	MessageInternal     = "Something went wrong, the command was not applied"
)

type ErrorKind string

const (
	KindNotACommand     ErrorKind = "not_a_command"
	KindUnknownCommand  ErrorKind = "unknown_command"
	KindPermission      ErrorKind = "permission"
	KindPrecondition    ErrorKind = "precondition"
	KindParamValidation ErrorKind = "param_validation"
	KindCommand         ErrorKind = "command"
	KindPlayValidation  ErrorKind = "play_validation"
	KindSnapCooldown    ErrorKind = "snap_cooldown"
	KindInvariant       ErrorKind = "invariant"
)

// Error is every failure the dispatch pipeline can report to a player.
// Message is user facing; Position is the 1-based offending parameter for
// param validation errors.
type Error struct {
	Kind     ErrorKind
	Message  string
	Position int
	Err      error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

var errNotACommand = &Error{Kind: KindNotACommand, Message: "not a command"}

// NotACommand marks ordinary chat. The dispatcher drops it silently.
func NotACommand() error {
	return errNotACommand
}

func UnknownCommand(name string) error {
	return &Error{Kind: KindUnknownCommand, Message: fmt.Sprintf("Command (%s) does not exist", name)}
}

func PermissionDenied(message string) error {
	return &Error{Kind: KindPermission, Message: message}
}

func PreconditionFailed(message string) error {
	return &Error{Kind: KindPrecondition, Message: message}
}

func ParamInvalid(position int, message string) error {
	return &Error{Kind: KindParamValidation, Message: message, Position: position}
}

// Fail is what handlers return when a business rule rejects the command.
func Fail(format string, args ...any) error {
	return &Error{Kind: KindCommand, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a user-facing kind and message to an underlying error.
func Wrap(kind ErrorKind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr.Kind, true
	}
	return "", false
}

func IsNotACommand(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNotACommand
}

// Classify maps any error reaching the dispatch boundary to an *Error.
// Assertion failures and unknown errors become invariant violations.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if crerr.HasAssertionFailure(err) {
		return &Error{Kind: KindInvariant, Message: MessageInternal, Err: err}
	}
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr
	}
	var playErr *game.PlayValidationError
	if errors.As(err, &playErr) {
		return &Error{Kind: KindPlayValidation, Message: playErr.Reason, Err: err}
	}
	if errors.Is(err, game.ErrSnapCooldown) {
		return &Error{Kind: KindSnapCooldown, Message: MessageSnapCooldown, Err: err}
	}
	return &Error{Kind: KindInvariant, Message: MessageInternal, Err: err}
}
