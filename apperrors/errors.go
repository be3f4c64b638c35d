package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a failure so handlers can map it to an HTTP status
// without inspecting message text. None of these are transient; callers
// never retry.
type Kind int

const (
	KindAuthorization Kind = iota + 1
	KindNotFound
	KindValidation
	KindConflict
)

type Error struct {
	Kind    Kind
	Message string
	// Extra carries structured detail, e.g. offending student ids on a
	// roster-membership violation.
	Extra map[string]any
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Authorization(msg string) error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func ValidationWith(msg string, extra map[string]any) error {
	return &Error{Kind: KindValidation, Message: msg, Extra: extra}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Respond writes err as the teacher-style JSON envelope. Unclassified
// errors fall through to 500 so partial synchronization failures are
// reported, never swallowed.
func Respond(c *fiber.Ctx, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	status := fiber.StatusInternalServerError
	switch e.Kind {
	case KindAuthorization:
		status = fiber.StatusForbidden
	case KindNotFound:
		status = fiber.StatusNotFound
	case KindValidation:
		status = fiber.StatusBadRequest
	case KindConflict:
		status = fiber.StatusConflict
	}

	body := fiber.Map{"error": e.Message}
	for k, v := range e.Extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}
