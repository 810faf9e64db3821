package errmatch

import (
	"errors"
	"strings"
)

var errDuplicate = errors.New("duplicate key")

type codeError struct{ code string }

func (e *codeError) Error() string { return e.code }

func Contains(err error) bool {
	return strings.Contains(err.Error(), "E11000") // want "error matched by message text; use errors.Is or errors.As"
}

func Prefix(err error) bool {
	return strings.HasPrefix(err.Error(), "dup") // want "error matched by message text; use errors.Is or errors.As"
}

func Equal(err error) bool {
	return err.Error() == "duplicate key" // want "error compared by message text; use errors.Is or errors.As"
}

func NotEqual(err *codeError) bool {
	return "x" != err.Error() // want "error compared by message text; use errors.Is or errors.As"
}

func Switch(err error) int {
	switch err.Error() { // want "switch on error message text; use errors.Is or errors.As"
	case "duplicate key":
		return 1
	}
	return 0
}

func Allowed(err error, s string) bool {
	if errors.Is(err, errDuplicate) {
		return true
	}
	var ce *codeError
	if errors.As(err, &ce) {
		return true
	}
	msg := err.Error()
	return strings.Contains(s, "slug") && msg != ""
}
