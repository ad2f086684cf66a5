package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// entityKind — вид идентификатора чата, переданного в инструмент
type entityKind int

const (
	entityInvalid entityKind = iota
	entitySelf               // "me"
	entityPhone              // +1234567890
	entityUsername           // @durov или durov
	entityID                 // числовой ID, включая отрицательные
)

// channelIDOffset — префикс, который Bot API добавляет к ID каналов
// и супергрупп (-100XXXXXXXXXX).
const channelIDOffset = 1000000000000

// classifyEntity разбирает строковый идентификатор чата.
// Возвращает вид идентификатора и нормализованное значение
// (без префиксов "@" и "+").
func classifyEntity(entity string) (entityKind, string) {
	entity = strings.TrimSpace(entity)
	if entity == "" {
		return entityInvalid, ""
	}

	if entity == "me" {
		return entitySelf, entity
	}

	if strings.HasPrefix(entity, "+") {
		digits := entity[1:]
		if digits != "" && isDigits(digits) {
			return entityPhone, digits
		}
		return entityInvalid, ""
	}

	if isDigits(strings.TrimPrefix(entity, "-")) {
		return entityID, entity
	}

	name := strings.TrimPrefix(entity, "@")
	if name == "" {
		return entityInvalid, ""
	}
	return entityUsername, name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResolvePeer превращает строковый идентификатор (username, номер телефона,
// числовой ID или "me") в InputPeer для запросов к API.
func (c *Client) ResolvePeer(ctx context.Context, entity string) (tg.InputPeerClass, error) {
	kind, value := classifyEntity(entity)

	switch kind {
	case entitySelf:
		return &tg.InputPeerSelf{}, nil

	case entityPhone:
		resolved, err := c.api.ContactsResolvePhone(ctx, value)
		if err != nil {
			return nil, errors.Wrapf(ErrPeerNotFound, "phone %q: %v", entity, err)
		}
		return inputPeerFromResolved(resolved)

	case entityUsername:
		resolved, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
			Username: value,
		})
		if err != nil {
			return nil, errors.Wrapf(ErrPeerNotFound, "username %q: %v", entity, err)
		}
		return inputPeerFromResolved(resolved)

	case entityID:
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrPeerNotFound, "bad chat id %q", entity)
		}
		return c.findPeerByID(ctx, id)

	default:
		return nil, errors.Wrapf(ErrPeerNotFound, "empty or malformed entity %q", entity)
	}
}

// inputPeerFromResolved строит InputPeer из ответа contacts.resolve*.
// Access hash берется из приложенных к ответу пользователей и чатов.
func inputPeerFromResolved(resolved *tg.ContactsResolvedPeer) (tg.InputPeerClass, error) {
	switch peer := resolved.Peer.(type) {
	case *tg.PeerUser:
		for _, u := range resolved.Users {
			if user, ok := u.(*tg.User); ok && user.ID == peer.UserID {
				return &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}, nil
			}
		}
	case *tg.PeerChannel:
		for _, ch := range resolved.Chats {
			if channel, ok := ch.(*tg.Channel); ok && channel.ID == peer.ChannelID {
				return &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}, nil
			}
		}
	case *tg.PeerChat:
		return &tg.InputPeerChat{ChatID: peer.ChatID}, nil
	}
	return nil, errors.Wrap(ErrPeerNotFound, "resolved peer without entity")
}

// findPeerByID ищет чат или пользователя по числовому ID среди диалогов.
// Понимает оба соглашения об ID: внутренние положительные и формат
// Bot API с минусом (-100... для каналов и супергрупп).
func (c *Client) findPeerByID(ctx context.Context, chatID int64) (tg.InputPeerClass, error) {
	rawID := chatID
	wantChannel := false

	if chatID < 0 {
		if chatID <= -channelIDOffset {
			// Канал или супергруппа с префиксом -100
			rawID = -(chatID + channelIDOffset)
			wantChannel = true
		} else {
			// Обычный групповой чат
			rawID = -chatID
		}
	}

	c.log.Debug("Looking for peer in dialogs", zap.Int64("chat_id", chatID), zap.Int64("raw_id", rawID))

	dialogs, err := c.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      100,
	})
	if err != nil {
		return nil, errors.Wrap(err, "get dialogs")
	}

	chats, users, _, err := splitDialogs(dialogs)
	if err != nil {
		return nil, err
	}

	if chatID > 0 {
		for _, u := range users {
			if user, ok := u.(*tg.User); ok && user.ID == rawID {
				return &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}, nil
			}
		}
		// Собственный аккаунт может не попасть в диалоги
		self, err := c.client.Self(ctx)
		if err == nil && self.ID == rawID {
			return &tg.InputPeerSelf{}, nil
		}
		// Положительные ID встречаются и у каналов, если клиент
		// передал внутренний ID без префикса
		if peer := findChannelPeer(chats, rawID); peer != nil {
			return peer, nil
		}
		return nil, errors.Wrapf(ErrPeerNotFound, "user %d not found in dialogs", chatID)
	}

	if wantChannel {
		if peer := findChannelPeer(chats, rawID); peer != nil {
			return peer, nil
		}
		return nil, errors.Wrapf(ErrPeerNotFound, "channel %d not found in dialogs", chatID)
	}

	for _, ch := range chats {
		if chat, ok := ch.(*tg.Chat); ok && chat.ID == rawID {
			return &tg.InputPeerChat{ChatID: chat.ID}, nil
		}
	}
	return nil, errors.Wrapf(ErrPeerNotFound, "chat %d not found in dialogs", chatID)
}

func findChannelPeer(chats []tg.ChatClass, rawID int64) tg.InputPeerClass {
	for _, ch := range chats {
		if channel, ok := ch.(*tg.Channel); ok && channel.ID == rawID {
			return &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}
		}
	}
	return nil
}

// splitDialogs извлекает списки диалогов, чатов и пользователей
// из ответа messages.getDialogs.
func splitDialogs(dialogsClass tg.MessagesDialogsClass) (chats []tg.ChatClass, users []tg.UserClass, dialogs []tg.DialogClass, err error) {
	switch d := dialogsClass.(type) {
	case *tg.MessagesDialogs:
		return d.Chats, d.Users, d.Dialogs, nil
	case *tg.MessagesDialogsSlice:
		return d.Chats, d.Users, d.Dialogs, nil
	default:
		return nil, nil, nil, errors.Errorf("unexpected dialogs type: %T", dialogsClass)
	}
}

// inputChannel сужает InputPeer до InputChannel для channels.* запросов
func inputChannel(peer tg.InputPeerClass) (*tg.InputChannel, bool) {
	ch, ok := peer.(*tg.InputPeerChannel)
	if !ok {
		return nil, false
	}
	return &tg.InputChannel{ChannelID: ch.ChannelID, AccessHash: ch.AccessHash}, true
}

// peerTargetID возвращает ID, по которому InputPeer сопоставляется
// с tg.PeerClass в апдейтах и диалогах.
func peerTargetID(peer tg.InputPeerClass, selfID int64) int64 {
	switch p := peer.(type) {
	case *tg.InputPeerSelf:
		return selfID
	case *tg.InputPeerUser:
		return p.UserID
	case *tg.InputPeerChat:
		return p.ChatID
	case *tg.InputPeerChannel:
		return p.ChannelID
	}
	return 0
}

// peerID возвращает ID из tg.PeerClass
func peerID(peer tg.PeerClass) int64 {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return p.UserID
	case *tg.PeerChat:
		return p.ChatID
	case *tg.PeerChannel:
		return p.ChannelID
	}
	return 0
}
