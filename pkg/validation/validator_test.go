package validation

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type passwordRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

func TestToDetails_PasswordBounds(t *testing.T) {
	Init()

	for _, pw := range []string{"12345", strings.Repeat("a", 80)} {
		err := binding.Validator.ValidateStruct(&passwordRequest{Password: pw})
		assert.Equal(t, "must be at least 6 characters and at most 72 bytes long", ToDetails(err)["password"])
	}
	assert.NoError(t, binding.Validator.ValidateStruct(&passwordRequest{Password: "secret1"}))
}

type avatarRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/png image/jpeg"`
	UserName    string `json:"user_name" binding:"omitempty,nospaces"`
}

func TestToDetails_ValidationErrorsUseJSONNames(t *testing.T) {
	Init()

	err := binding.Validator.ValidateStruct(&avatarRequest{UserName: "ana lima"})

	assert.Equal(t, map[string]string{
		"content_type": "is required",
		"user_name":    "must not contain spaces",
	}, ToDetails(err))
}

func TestToDetails_OneOf(t *testing.T) {
	Init()

	err := binding.Validator.ValidateStruct(&avatarRequest{ContentType: "image/gif"})

	assert.Equal(t, "must be one of: image/png, image/jpeg", ToDetails(err)["content_type"])
}

func TestToDetails_DecodeErrors(t *testing.T) {
	var v map[string]any
	syntax := json.Unmarshal([]byte("{"), &v)

	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(syntax))
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(io.EOF))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("boom")))
	assert.Nil(t, ToDetails(nil))
}
