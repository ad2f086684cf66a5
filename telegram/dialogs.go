package telegram

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// SearchDialogs возвращает диалоги (пользователи, группы, каналы),
// чье название или username содержит query. Поиск без учета регистра.
// Отсутствие совпадений — не ошибка, возвращается пустой список.
func (c *Client) SearchDialogs(ctx context.Context, query string, limit int) ([]Dialog, error) {
	if limit <= 0 {
		limit = 10
	}

	dialogsClass, err := c.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      100,
	})
	if err != nil {
		return nil, errors.Wrap(err, "get dialogs")
	}

	chats, users, dialogs, err := splitDialogs(dialogsClass)
	if err != nil {
		return nil, err
	}

	all := collectDialogs(dialogs, chats, users)
	matched := filterDialogs(all, query, limit)

	c.log.Debug("Dialog search finished",
		zap.String("query", query),
		zap.Int("total", len(all)),
		zap.Int("matched", len(matched)))

	return matched, nil
}

// collectDialogs собирает информацию о диалогах из ответа API,
// сопоставляя пиры с приложенными пользователями и чатами.
func collectDialogs(dialogs []tg.DialogClass, chats []tg.ChatClass, users []tg.UserClass) []Dialog {
	chatMap := make(map[int64]tg.ChatClass, len(chats))
	for _, ch := range chats {
		switch chat := ch.(type) {
		case *tg.Chat:
			chatMap[chat.ID] = chat
		case *tg.Channel:
			chatMap[chat.ID] = chat
		}
	}

	userMap := make(map[int64]*tg.User, len(users))
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			userMap[user.ID] = user
		}
	}

	result := make([]Dialog, 0, len(dialogs))
	for _, dialogClass := range dialogs {
		dialog, ok := dialogClass.(*tg.Dialog)
		if !ok {
			// Папки и прочие не-диалоги пропускаем
			continue
		}

		var info Dialog
		switch peer := dialog.Peer.(type) {
		case *tg.PeerUser:
			user, ok := userMap[peer.UserID]
			if !ok {
				continue
			}
			dialogType := "user"
			if user.Bot {
				dialogType = "bot"
			}
			info = Dialog{
				ID:       user.ID,
				Title:    strings.TrimSpace(user.FirstName + " " + user.LastName),
				Type:     dialogType,
				Username: user.Username,
			}
		case *tg.PeerChat:
			chat, ok := chatMap[peer.ChatID].(*tg.Chat)
			if !ok {
				continue
			}
			info = Dialog{
				ID:    chat.ID,
				Title: chat.Title,
				Type:  "chat",
			}
		case *tg.PeerChannel:
			channel, ok := chatMap[peer.ChannelID].(*tg.Channel)
			if !ok {
				continue
			}
			channelType := "channel"
			if channel.Megagroup {
				channelType = "supergroup"
			}
			info = Dialog{
				ID:       channel.ID,
				Title:    channel.Title,
				Type:     channelType,
				Username: channel.Username,
			}
		default:
			continue
		}

		info.UnreadCount = dialog.UnreadCount
		result = append(result, info)
	}
	return result
}

// filterDialogs оставляет диалоги, чье название или username
// содержит query (без учета регистра). Пустой query пропускает все.
func filterDialogs(dialogs []Dialog, query string, limit int) []Dialog {
	lowerQuery := strings.ToLower(strings.TrimSpace(query))

	matched := make([]Dialog, 0, limit)
	for _, d := range dialogs {
		if lowerQuery != "" &&
			!strings.Contains(strings.ToLower(d.Title), lowerQuery) &&
			!strings.Contains(strings.ToLower(d.Username), lowerQuery) {
			continue
		}
		matched = append(matched, d)
		if len(matched) >= limit {
			break
		}
	}
	return matched
}
