package telegram

import (
	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
)

// historyEntities — пользователи и чаты, приложенные к ответу API.
// Нужны для разрешения отправителей по ID.
type historyEntities struct {
	users map[int64]*tg.User
	chats map[int64]tg.ChatClass
}

// splitHistory извлекает сообщения и сущности из ответа messages.get*
func splitHistory(historyClass tg.MessagesMessagesClass) ([]tg.MessageClass, historyEntities, error) {
	var (
		messages []tg.MessageClass
		users    []tg.UserClass
		chats    []tg.ChatClass
	)

	switch h := historyClass.(type) {
	case *tg.MessagesMessages:
		messages, users, chats = h.Messages, h.Users, h.Chats
	case *tg.MessagesMessagesSlice:
		messages, users, chats = h.Messages, h.Users, h.Chats
	case *tg.MessagesChannelMessages:
		messages, users, chats = h.Messages, h.Users, h.Chats
	default:
		return nil, historyEntities{}, errors.Errorf("unexpected messages type: %T", historyClass)
	}

	ent := historyEntities{
		users: make(map[int64]*tg.User, len(users)),
		chats: make(map[int64]tg.ChatClass, len(chats)),
	}
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			ent.users[user.ID] = user
		}
	}
	for _, c := range chats {
		switch chat := c.(type) {
		case *tg.Chat:
			ent.chats[chat.ID] = chat
		case *tg.Channel:
			ent.chats[chat.ID] = chat
		}
	}
	return messages, ent, nil
}

// convertMessage переводит tg.Message в доменное представление
func convertMessage(msg *tg.Message, ent historyEntities) Message {
	result := Message{
		ID:          msg.ID,
		Date:        msg.Date,
		Text:        msg.Message,
		IsOutgoing:  msg.Out,
		IsMentioned: msg.Mentioned,
	}

	if fromID, ok := msg.GetFromID(); ok {
		result.Sender = senderFromPeer(fromID, ent)
	}

	if fwdFrom, ok := msg.GetFwdFrom(); ok && fwdFrom.FromID != nil {
		result.ForwardFrom = senderFromPeer(fwdFrom.FromID, ent)
	}

	if replyTo, ok := msg.GetReplyTo(); ok {
		if header, ok := replyTo.(*tg.MessageReplyHeader); ok {
			result.ReplyToMsgID = header.ReplyToMsgID
		}
	}

	if entities, ok := msg.GetEntities(); ok {
		result.Entities = convertEntities(entities)
	}

	if media, ok := msg.GetMedia(); ok {
		result.MediaType = mediaKind(media)
	}

	if views, ok := msg.GetViews(); ok {
		result.Views = views
	}
	if editDate, ok := msg.GetEditDate(); ok {
		result.EditDate = editDate
	}

	return result
}

// senderFromPeer разрешает отправителя через приложенные сущности
func senderFromPeer(peer tg.PeerClass, ent historyEntities) *Sender {
	switch p := peer.(type) {
	case *tg.PeerUser:
		user, ok := ent.users[p.UserID]
		if !ok {
			return &Sender{ID: p.UserID, Type: "user"}
		}
		return &Sender{
			ID:        user.ID,
			Type:      "user",
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			IsBot:     user.Bot,
		}
	case *tg.PeerChat:
		sender := &Sender{ID: p.ChatID, Type: "chat"}
		if chat, ok := ent.chats[p.ChatID].(*tg.Chat); ok {
			sender.FirstName = chat.Title
		}
		return sender
	case *tg.PeerChannel:
		sender := &Sender{ID: p.ChannelID, Type: "channel"}
		if channel, ok := ent.chats[p.ChannelID].(*tg.Channel); ok {
			if channel.Megagroup {
				sender.Type = "supergroup"
			}
			sender.FirstName = channel.Title
			sender.Username = channel.Username
		}
		return sender
	}
	return nil
}

// convertEntities переводит форматирование текста в доменные типы
func convertEntities(entities []tg.MessageEntityClass) []TextEntity {
	result := make([]TextEntity, 0, len(entities))
	for _, entity := range entities {
		switch e := entity.(type) {
		case *tg.MessageEntityBold:
			result = append(result, TextEntity{Type: "bold", Offset: e.Offset, Length: e.Length})
		case *tg.MessageEntityItalic:
			result = append(result, TextEntity{Type: "italic", Offset: e.Offset, Length: e.Length})
		case *tg.MessageEntityCode:
			result = append(result, TextEntity{Type: "code", Offset: e.Offset, Length: e.Length})
		case *tg.MessageEntityPre:
			result = append(result, TextEntity{Type: "pre", Offset: e.Offset, Length: e.Length, Language: e.Language})
		case *tg.MessageEntityURL:
			result = append(result, TextEntity{Type: "url", Offset: e.Offset, Length: e.Length})
		case *tg.MessageEntityTextURL:
			result = append(result, TextEntity{Type: "text_url", Offset: e.Offset, Length: e.Length, URL: e.URL})
		case *tg.MessageEntityMention:
			result = append(result, TextEntity{Type: "mention", Offset: e.Offset, Length: e.Length})
		case *tg.MessageEntityMentionName:
			result = append(result, TextEntity{Type: "mention_name", Offset: e.Offset, Length: e.Length, UserID: e.UserID})
		}
	}
	return result
}

// mediaKind определяет тип медиа для вывода в результате
func mediaKind(media tg.MessageMediaClass) string {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		return "photo"
	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return "document"
		}
		switch {
		case doc.MimeType == "video/mp4":
			return "video"
		case doc.MimeType == "audio/mpeg" || doc.MimeType == "audio/mp3" || doc.MimeType == "audio/ogg":
			return "audio"
		case doc.MimeType == "image/gif":
			return "gif"
		default:
			return "document"
		}
	case *tg.MessageMediaContact:
		return "contact"
	case *tg.MessageMediaGeo:
		return "geo"
	case *tg.MessageMediaPoll:
		return "poll"
	case *tg.MessageMediaWebPage:
		return "webpage"
	default:
		return ""
	}
}

// sentMessageID извлекает ID отправленного сообщения из апдейтов
func sentMessageID(updates tg.UpdatesClass) int {
	switch u := updates.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID
	case *tg.Updates:
		return messageIDFromUpdates(u.Updates)
	case *tg.UpdatesCombined:
		return messageIDFromUpdates(u.Updates)
	}
	return 0
}

func messageIDFromUpdates(updates []tg.UpdateClass) int {
	for _, upd := range updates {
		switch v := upd.(type) {
		case *tg.UpdateMessageID:
			return v.ID
		case *tg.UpdateNewMessage:
			if msg, ok := v.Message.(*tg.Message); ok {
				return msg.ID
			}
		case *tg.UpdateNewChannelMessage:
			if msg, ok := v.Message.(*tg.Message); ok {
				return msg.ID
			}
		}
	}
	return 0
}

// filterHistory применяет фильтры истории к списку сообщений.
// Порядок на входе и выходе — от новых к старым.
func filterHistory(messages []Message, opts HistoryOptions, readMaxID, limit int) []Message {
	result := make([]Message, 0, limit)
	for _, msg := range messages {
		if opts.StartDate > 0 && int64(msg.Date) < opts.StartDate {
			continue
		}
		if opts.EndDate > 0 && int64(msg.Date) > opts.EndDate {
			continue
		}
		if opts.UnreadOnly && (msg.IsOutgoing || msg.ID <= readMaxID) {
			continue
		}
		result = append(result, msg)
		if len(result) >= limit {
			break
		}
	}
	return result
}
