// Package result holds the value returned by every service operation:
// exactly one of Data or Error is set. Expected failures travel here,
// exceptional ones through the accompanying error return.
package result

// Failure is a user-facing failure. Fields names the inputs that caused it
// and is empty (never nil) when the failure is not attributable to a field.
type Failure struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields"`
}

type Result[T any] struct {
	Data  *T       `json:"data"`
	Error *Failure `json:"error"`
}

func Ok[T any](data T) Result[T] {
	return Result[T]{Data: &data}
}

func Fail[T any](message string, fields ...string) Result[T] {
	if fields == nil {
		fields = []string{}
	}
	return Result[T]{Error: &Failure{Message: message, Fields: fields}}
}

// FromFailure re-types a failure produced by another operation.
func FromFailure[T any](f *Failure) Result[T] {
	return Result[T]{Error: f}
}

func (r Result[T]) Failed() bool { return r.Error != nil }

// Empty is the success payload of operations that return nothing.
type Empty struct{}
