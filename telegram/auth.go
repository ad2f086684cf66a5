package telegram

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// PromptAuthenticator проходит авторизацию как явную последовательность
// запросов: телефон -> код подтверждения -> пароль 2FA (если включен).
// Реализует auth.UserAuthenticator поверх терминального ввода.
// Все запросы читают через один буферизованный reader: свежий буфер на
// каждый запрос съедал бы следующие строки, когда ввод идет через pipe.
type PromptAuthenticator struct {
	PhoneNumber string // если пусто, номер будет запрошен

	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func (p *PromptAuthenticator) prompt(label string) (string, error) {
	if _, err := fmt.Fprint(p.Out, label); err != nil {
		return "", err
	}
	if p.reader == nil {
		// bufio.NewReader не оборачивает повторно уже буферизованный In
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "read input")
	}
	return strings.TrimSpace(line), nil
}

// Phone возвращает номер телефона в международном формате
func (p *PromptAuthenticator) Phone(_ context.Context) (string, error) {
	if p.PhoneNumber != "" {
		return p.PhoneNumber, nil
	}
	return p.prompt("Phone number (international format, e.g. +1234567890): ")
}

// Code запрашивает код подтверждения, отправленный Telegram
func (p *PromptAuthenticator) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	return p.prompt("Enter the code you received: ")
}

// Password запрашивает пароль двухфакторной аутентификации.
// Вызывается только если 2FA включен на аккаунте.
func (p *PromptAuthenticator) Password(_ context.Context) (string, error) {
	return p.prompt("Two-factor authentication password: ")
}

// AcceptTermsOfService принимает условия использования
func (p *PromptAuthenticator) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

// SignUp не поддерживается: инструмент работает только с существующим аккаунтом
func (p *PromptAuthenticator) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("sign up is not supported, register the account in a Telegram app first")
}
