package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mailtpl "github.com/SouzaGabriel26/onde-ir/pkg/mailer/templates"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to, subject, text, html string) error {
	args := m.Called(ctx, to, subject, text, html)
	return args.Error(0)
}

func TestDeliver_Template(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, "a@x.com", "Onde Ir: reset your password", mock.MatchedBy(func(s string) bool {
		return strings.Contains(s, "https://app/reset/1")
	}), mock.Anything).Return(nil)

	job := EmailJob{
		To:       "a@x.com",
		Template: mailtpl.ResetPassword,
		Data:     mailtpl.NewData("Onde Ir", "Ana", "", mailtpl.WithResetURL("https://app/reset/1")).ToMap(),
	}

	require.NoError(t, Deliver(context.Background(), sender, job))
	sender.AssertExpectations(t)
}

func TestDeliver_Raw(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, "a@x.com", "hi", "body", "").Return(nil)

	require.NoError(t, Deliver(context.Background(), sender, EmailJob{To: "a@x.com", Subject: "hi", Text: "body"}))
	sender.AssertExpectations(t)
}

func TestDeliver_Malformed(t *testing.T) {
	sender := new(MockSender)

	cases := []EmailJob{
		{Subject: "hi", Text: "x"},
		{To: "a@x.com"},
		{To: "a@x.com", Template: "does_not_exist"},
	}
	for _, job := range cases {
		err := Deliver(context.Background(), sender, job)
		assert.True(t, errors.Is(err, ErrMalformedJob), "job %+v", job)
	}
	sender.AssertNotCalled(t, "Send")
}

func TestDeliver_SendErrorIsRetryable(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("mailgun down"))

	err := Deliver(context.Background(), sender, EmailJob{To: "a@x.com", Subject: "hi", Text: "body"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedJob))
}
