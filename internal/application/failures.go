package application

import (
	"github.com/SouzaGabriel26/onde-ir/pkg/result"
	"github.com/SouzaGabriel26/onde-ir/pkg/validation"
)

// User-facing failure messages. The HTTP layer maps them to status codes.
const (
	MsgPasswordsMustMatch     = "passwords must match"
	MsgEmailTaken             = "email already in use"
	MsgUserNameTaken          = "user name already in use"
	MsgInvalidCredentials     = "invalid credentials"
	MsgEmailNotRegistered     = "email not registered"
	MsgInvalidToken           = "invalid token"
	MsgUserNotFound           = "user not found"
	MsgInvalidCurrentPassword = "invalid current password"
)

func fieldNames(fields ...validation.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}

func fail[T any](message string, fields ...validation.Field) result.Result[T] {
	return result.Fail[T](message, fieldNames(fields...)...)
}

// put adds value to p unless it is empty; an empty form value counts as not provided.
func put(p validation.Payload, f validation.Field, value string) {
	if value != "" {
		p[f] = value
	}
}
