package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ResetPassword(t *testing.T) {
	data := NewData("Onde Ir", "Ana Lima", "a@x.com",
		WithResetURL("https://onde-ir.app/auth/reset-password/123"),
		WithExpiresIn(5*time.Minute),
		WithTime(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
	)

	msg, err := Render(ResetPassword, data.ToMap())
	require.NoError(t, err)

	assert.Equal(t, "Onde Ir: reset your password", msg.Subject)
	assert.Contains(t, msg.Text, "https://onde-ir.app/auth/reset-password/123")
	assert.Contains(t, msg.Text, "5 minutes")
	assert.Contains(t, msg.HTML, "Ana Lima")
}

func TestRender_PasswordChangedDefaultsAppName(t *testing.T) {
	data := NewData("", "Ana", "a@x.com", WithTime(time.Now()))

	msg, err := Render(PasswordChanged, data.ToMap())
	require.NoError(t, err)
	assert.Equal(t, "Onde Ir: your password was changed", msg.Subject)
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("nope", map[string]any{})
	assert.Error(t, err)
}
