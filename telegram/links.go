package telegram

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
)

// ErrBadLink — ссылка не похожа на ссылку на сообщение Telegram
var ErrBadLink = errors.New("malformed message link")

// MessageLink — разобранная ссылка на сообщение.
// Заполнено либо Username (публичная ссылка t.me/durov/123),
// либо ChannelID (приватная ссылка t.me/c/1234567/123).
type MessageLink struct {
	Username  string
	ChannelID int64
	MessageID int
}

// ParseMessageLink разбирает ссылку на сообщение без обращения к сети.
// Допустимые хосты: t.me, telegram.me; схема не обязательна.
func ParseMessageLink(link string) (MessageLink, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return MessageLink{}, errors.Wrap(ErrBadLink, "empty link")
	}
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}

	u, err := url.Parse(link)
	if err != nil {
		return MessageLink{}, errors.Wrapf(ErrBadLink, "%v", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return MessageLink{}, errors.Wrapf(ErrBadLink, "unexpected scheme %q", u.Scheme)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "t.me" && host != "telegram.me" {
		return MessageLink{}, errors.Wrapf(ErrBadLink, "unexpected host %q", u.Hostname())
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	// Приватная форма: /c/<channel_id>/<message_id>
	if len(parts) == 3 && parts[0] == "c" {
		channelID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || channelID <= 0 {
			return MessageLink{}, errors.Wrapf(ErrBadLink, "bad channel id %q", parts[1])
		}
		messageID, err := strconv.Atoi(parts[2])
		if err != nil || messageID <= 0 {
			return MessageLink{}, errors.Wrapf(ErrBadLink, "bad message id %q", parts[2])
		}
		return MessageLink{ChannelID: channelID, MessageID: messageID}, nil
	}

	// Публичная форма: /<username>/<message_id>
	if len(parts) == 2 {
		username := parts[0]
		if username == "" || username == "c" {
			return MessageLink{}, errors.Wrapf(ErrBadLink, "bad username %q", username)
		}
		messageID, err := strconv.Atoi(parts[1])
		if err != nil || messageID <= 0 {
			return MessageLink{}, errors.Wrapf(ErrBadLink, "bad message id %q", parts[1])
		}
		return MessageLink{Username: username, MessageID: messageID}, nil
	}

	return MessageLink{}, errors.Wrapf(ErrBadLink, "unexpected path %q", u.Path)
}

// MessageFromLink получает сообщение по публичной или приватной ссылке.
// Для приватной ссылки канал должен присутствовать в диалогах аккаунта,
// иначе access hash взять неоткуда.
func (c *Client) MessageFromLink(ctx context.Context, link string) (*Message, error) {
	parsed, err := ParseMessageLink(link)
	if err != nil {
		return nil, err
	}

	var peer tg.InputPeerClass
	if parsed.Username != "" {
		resolved, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
			Username: parsed.Username,
		})
		if err != nil {
			return nil, errors.Wrapf(ErrPeerNotFound, "username %q: %v", parsed.Username, err)
		}
		peer, err = inputPeerFromResolved(resolved)
		if err != nil {
			return nil, err
		}
	} else {
		peer, err = c.findPeerByID(ctx, -(parsed.ChannelID + channelIDOffset))
		if err != nil {
			return nil, err
		}
	}

	return c.MessageByID(ctx, peer, parsed.MessageID)
}
