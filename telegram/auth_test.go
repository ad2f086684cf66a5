package telegram

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptAuthenticatorSequence(t *testing.T) {
	// Весь ввод приходит одним pipe: каждая следующая строка должна
	// доставаться следующему запросу, а не пропадать в чужом буфере
	in := strings.NewReader("+1234567890\n12345\nsecret\n")
	var out bytes.Buffer
	p := &PromptAuthenticator{In: in, Out: &out}

	phone, err := p.Phone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+1234567890", phone)

	code, err := p.Code(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "12345", code)

	password, err := p.Password(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", password)

	assert.Contains(t, out.String(), "Phone number")
	assert.Contains(t, out.String(), "code")
}

func TestPromptAuthenticatorPresetPhone(t *testing.T) {
	p := &PromptAuthenticator{PhoneNumber: "+1999", In: strings.NewReader(""), Out: &bytes.Buffer{}}

	phone, err := p.Phone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+1999", phone)
}

func TestPromptAuthenticatorLastLineWithoutNewline(t *testing.T) {
	p := &PromptAuthenticator{In: strings.NewReader("12345"), Out: &bytes.Buffer{}}

	code, err := p.Code(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "12345", code)
}

func TestPromptAuthenticatorSignUpRejected(t *testing.T) {
	p := &PromptAuthenticator{In: strings.NewReader(""), Out: &bytes.Buffer{}}

	_, err := p.SignUp(context.Background())
	assert.Error(t, err)
}
