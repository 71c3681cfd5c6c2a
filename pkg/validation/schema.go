package validation

import (
	"github.com/go-playground/validator/v10"

	"github.com/SouzaGabriel26/onde-ir/pkg/result"
)

// Field is the closed set of inputs the auth flows accept.
type Field string

const (
	FieldEmail                Field = "email"
	FieldName                 Field = "name"
	FieldUserName             Field = "user_name"
	FieldPassword             Field = "password"
	FieldConfirmPassword      Field = "confirm_password"
	FieldCurrentPassword      Field = "current_password"
	FieldNewPassword          Field = "new_password"
	FieldConfirmNewPassword   Field = "confirm_new_password"
	FieldUserID               Field = "user_id"
	FieldResetPasswordTokenID Field = "reset_password_token_id"
	FieldAvatarURL            Field = "avatar_url"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

type Presence int

const (
	Required Presence = iota
	Optional
)

// Rule declares one field to check. Rules are evaluated in the order given.
type Rule struct {
	Field    Field
	Presence Presence
}

func Require(f Field) Rule { return Rule{Field: f, Presence: Required} }
func Optionally(f Field) Rule { return Rule{Field: f, Presence: Optional} }

// Payload maps fields to raw values. A missing key means the value was not
// provided at all; a nil value was provided as null.
type Payload map[Field]any

type shape struct {
	tag     string
	message string
}

var shapes = map[Field]shape{
	FieldEmail:                {tag: "email", message: "invalid email"},
	FieldName:                 {tag: "min=3", message: "name must be at least 3 characters long"},
	FieldUserName:             {tag: "min=1,nospaces", message: "user name must not be empty or contain spaces"},
	FieldPassword:             {tag: "pwd", message: "password must be at least 6 characters and at most 72 bytes long"},
	FieldConfirmPassword:      {tag: "pwd", message: "password confirmation must be at least 6 characters and at most 72 bytes long"},
	FieldCurrentPassword:      {tag: "pwd", message: "current password must be at least 6 characters and at most 72 bytes long"},
	FieldNewPassword:          {tag: "pwd", message: "new password must be at least 6 characters and at most 72 bytes long"},
	FieldConfirmNewPassword:   {tag: "pwd", message: "new password confirmation must be at least 6 characters and at most 72 bytes long"},
	FieldUserID:               {tag: "uuid", message: "invalid user id"},
	FieldResetPasswordTokenID: {tag: "uuid", message: "invalid reset password token id"},
	FieldAvatarURL:            {tag: "url", message: "invalid avatar url"},
}

var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New()
	configure(v)
	return v
}

const msgEmptyInput = "input must not be empty"

// Validate checks payload against rules and stops at the first failing field.
// Optional fields that were not provided are skipped; provided ones, including
// null, must still match the field's shape. On success only the validated
// fields are returned.
func Validate(payload Payload, rules ...Rule) result.Result[Payload] {
	if len(payload) == 0 {
		return result.Fail[Payload](msgEmptyInput)
	}

	out := make(Payload, len(rules))
	for _, rule := range rules {
		value, provided := payload[rule.Field]
		if !provided {
			if rule.Presence == Optional {
				continue
			}
			return result.Fail[Payload](string(rule.Field)+" is required", string(rule.Field))
		}
		if msg, ok := checkShape(rule.Field, value); !ok {
			return result.Fail[Payload](msg, string(rule.Field))
		}
		out[rule.Field] = value
	}
	return result.Ok(out)
}

func checkShape(f Field, value any) (string, bool) {
	sh, known := shapes[f]
	if !known {
		return "unsupported field " + string(f), false
	}
	s, isString := value.(string)
	if !isString {
		return sh.message, false
	}
	if err := engine.Var(s, sh.tag); err != nil {
		return sh.message, false
	}
	return "", true
}
