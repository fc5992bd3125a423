package mono

import (
	"errors"
	"fmt"
)

// ErrTooManyInstances is wrapped by the InternalError of a run that hit
// Options.MaxInstances. Checking cannot rule out unbounded polymorphic
// recursion, so this one is expected for some accepted programs.
var ErrTooManyInstances = errors.New("too many specializations")

// InternalError is a broken assumption about a program that passed checking.
// It is never a user error: checking should have reported the problem first.
type InternalError struct {
	Key Key
	Msg string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("mono: internal error in %s: %s", e.Key.String(), e.Msg)
}

func (e *InternalError) Unwrap() error { return e.Err }

func (k Key) String() string {
	kind := "def"
	if k.Kind == KeyMember {
		kind = "member"
	}
	s := fmt.Sprintf("%s#%d", kind, k.ID)
	if k.Field != "" {
		s += "." + k.Field
	}
	if k.Args != "" {
		s += "[" + string(k.Args) + "]"
	}
	return s
}

func (c *concretizer) fail(format string, args ...any) {
	panic(&InternalError{Key: c.key, Msg: fmt.Sprintf(format, args...)})
}

// recoverInternal turns an InternalError panic into err. Other panics propagate.
func recoverInternal(err *error) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*InternalError)
	if !ok {
		panic(r)
	}
	*err = ie
}
