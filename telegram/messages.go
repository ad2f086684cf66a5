package telegram

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"go.uber.org/zap"
)

// SendMessage отправляет текст и/или файл в указанный чат.
// Возвращает ID отправленного сообщения.
func (c *Client) SendMessage(ctx context.Context, entity, text, filePath string, replyTo int) (int, error) {
	peer, err := c.ResolvePeer(ctx, entity)
	if err != nil {
		return 0, err
	}

	randomID, err := c.randomID()
	if err != nil {
		return 0, err
	}

	var updates tg.UpdatesClass
	if filePath != "" {
		updates, err = c.sendFile(ctx, peer, text, filePath, replyTo, randomID)
	} else {
		req := &tg.MessagesSendMessageRequest{
			Peer:     peer,
			Message:  text,
			RandomID: randomID,
		}
		if replyTo > 0 {
			req.SetReplyTo(&tg.InputReplyToMessage{ReplyToMsgID: replyTo})
		}
		updates, err = c.api.MessagesSendMessage(ctx, req)
	}
	if err != nil {
		return 0, errors.Wrap(err, "send message")
	}

	id := sentMessageID(updates)
	c.log.Info("Message sent", zap.String("entity", entity), zap.Int("message_id", id))
	return id, nil
}

// sendFile загружает файл и отправляет его одним сообщением.
// Изображения уходят как фото, все остальное — как документ.
func (c *Client) sendFile(ctx context.Context, peer tg.InputPeerClass, text, filePath string, replyTo int, randomID int64) (tg.UpdatesClass, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, errors.Wrapf(err, "file %q", filePath)
	}

	upload, err := uploader.NewUploader(c.api).FromPath(ctx, filePath)
	if err != nil {
		return nil, errors.Wrap(err, "upload file")
	}

	var media tg.InputMediaClass
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".jpg", ".jpeg", ".png":
		media = &tg.InputMediaUploadedPhoto{File: upload}
	default:
		media = &tg.InputMediaUploadedDocument{
			File: upload,
			Attributes: []tg.DocumentAttributeClass{
				&tg.DocumentAttributeFilename{FileName: filepath.Base(filePath)},
			},
		}
	}

	req := &tg.MessagesSendMediaRequest{
		Peer:     peer,
		Media:    media,
		Message:  text,
		RandomID: randomID,
	}
	if replyTo > 0 {
		req.SetReplyTo(&tg.InputReplyToMessage{ReplyToMsgID: replyTo})
	}
	return c.api.MessagesSendMedia(ctx, req)
}

// EditMessage заменяет текст своего сообщения
func (c *Client) EditMessage(ctx context.Context, entity string, messageID int, text string) error {
	peer, err := c.ResolvePeer(ctx, entity)
	if err != nil {
		return err
	}

	req := &tg.MessagesEditMessageRequest{
		Peer: peer,
		ID:   messageID,
	}
	req.SetMessage(text)

	if _, err := c.api.MessagesEditMessage(ctx, req); err != nil {
		if tgerr.Is(err, "MESSAGE_ID_INVALID") {
			return errors.Wrapf(ErrNotFound, "message %d", messageID)
		}
		if tgerr.Is(err, "MESSAGE_EDIT_TIME_EXPIRED", "MESSAGE_AUTHOR_REQUIRED", "CHAT_WRITE_FORBIDDEN") {
			return errors.Wrapf(err, "message %d is not editable", messageID)
		}
		return errors.Wrap(err, "edit message")
	}

	c.log.Info("Message edited", zap.String("entity", entity), zap.Int("message_id", messageID))
	return nil
}

// DeleteMessages удаляет сообщения по ID (для всех участников).
// Возвращает количество фактически удаленных сообщений; ноль означает,
// что сообщения не найдены или уже удалены.
func (c *Client) DeleteMessages(ctx context.Context, entity string, messageIDs []int) (int, error) {
	peer, err := c.ResolvePeer(ctx, entity)
	if err != nil {
		return 0, err
	}

	var affected *tg.MessagesAffectedMessages
	if channel, ok := inputChannel(peer); ok {
		// Для каналов и супергрупп свой метод удаления
		affected, err = c.api.ChannelsDeleteMessages(ctx, &tg.ChannelsDeleteMessagesRequest{
			Channel: channel,
			ID:      messageIDs,
		})
	} else {
		affected, err = c.api.MessagesDeleteMessages(ctx, &tg.MessagesDeleteMessagesRequest{
			Revoke: true,
			ID:     messageIDs,
		})
	}
	if err != nil {
		return 0, errors.Wrap(err, "delete messages")
	}

	if affected.PtsCount == 0 {
		return 0, errors.Wrapf(ErrNotFound, "messages %v", messageIDs)
	}

	c.log.Info("Messages deleted", zap.String("entity", entity), zap.Int("count", affected.PtsCount))
	return affected.PtsCount, nil
}

// maxHistoryPages ограничивает глубину обхода истории за один вызов
const maxHistoryPages = 10

// GetMessages возвращает историю чата, новые сообщения первыми.
// Окно дат задает стартовое смещение запроса, дальше история листается
// страницами, пока фильтры не наберут limit или окно не закончится.
func (c *Client) GetMessages(ctx context.Context, entity string, opts HistoryOptions) ([]Message, error) {
	if opts.StartDate > 0 && opts.EndDate > 0 && opts.StartDate > opts.EndDate {
		return nil, errors.New("start_date is after end_date")
	}

	peer, err := c.ResolvePeer(ctx, entity)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	// Граница прочитанного нужна только для фильтра непрочитанных
	readMaxID := 0
	fetchLimit := limit
	if opts.UnreadOnly {
		dialog, err := c.peerDialog(ctx, peer)
		if err != nil {
			return nil, err
		}
		readMaxID = dialog.ReadInboxMaxID
		if dialog.UnreadCount > fetchLimit {
			fetchLimit = dialog.UnreadCount
		}
	}
	if fetchLimit > 100 {
		fetchLimit = 100
	}

	req := historyRequest(peer, opts, fetchLimit)

	messages := make([]Message, 0, limit)
	for page := 0; page < maxHistoryPages; page++ {
		history, err := c.api.MessagesGetHistory(ctx, req)
		if err != nil {
			return nil, errors.Wrap(err, "get history")
		}

		raw, ent, err := splitHistory(history)
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			break
		}

		batch := make([]Message, 0, len(raw))
		for _, msgClass := range raw {
			msg, ok := msgClass.(*tg.Message)
			if !ok {
				// Служебные сообщения пропускаем
				continue
			}
			batch = append(batch, convertMessage(msg, ent))
		}

		messages = append(messages, filterHistory(batch, opts, readMaxID, limit-len(messages))...)
		if len(messages) >= limit || historyExhausted(batch, len(raw), fetchLimit, opts, readMaxID) {
			break
		}

		req.OffsetID = raw[len(raw)-1].GetID()
		req.OffsetDate = 0
	}

	if opts.MarkAsRead && len(messages) > 0 {
		if err := c.markAsRead(ctx, peer); err != nil {
			// Сообщения уже получены, поэтому не роняем весь вызов
			c.log.Warn("Failed to mark history as read", zap.Error(err))
		}
	}

	c.log.Debug("History fetched", zap.String("entity", entity), zap.Int("count", len(messages)))
	return messages, nil
}

// historyRequest строит первый запрос истории. Верхняя граница окна дат
// становится стартовым смещением: offset_date отдает сообщения строго
// старше, поэтому +1, чтобы не потерять сообщения в саму секунду границы.
func historyRequest(peer tg.InputPeerClass, opts HistoryOptions, fetchLimit int) *tg.MessagesGetHistoryRequest {
	req := &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: fetchLimit,
	}
	if opts.EndDate > 0 {
		req.OffsetDate = int(opts.EndDate) + 1
	}
	return req
}

// historyExhausted сообщает, что листать историю дальше бессмысленно:
// страницы кончились, страница вышла за нижнюю границу окна дат
// или вся оставшаяся история уже прочитана.
func historyExhausted(batch []Message, rawLen, fetchLimit int, opts HistoryOptions, readMaxID int) bool {
	if rawLen < fetchLimit {
		return true
	}
	if len(batch) == 0 {
		// Страница из одних служебных сообщений, но история не кончилась
		return false
	}
	oldest := batch[len(batch)-1]
	if opts.StartDate > 0 && int64(oldest.Date) < opts.StartDate {
		return true
	}
	if opts.UnreadOnly && oldest.ID <= readMaxID {
		return true
	}
	return false
}

// peerDialog возвращает состояние диалога конкретного пира
func (c *Client) peerDialog(ctx context.Context, peer tg.InputPeerClass) (*tg.Dialog, error) {
	resp, err := c.api.MessagesGetPeerDialogs(ctx, []tg.InputDialogPeerClass{
		&tg.InputDialogPeer{Peer: peer},
	})
	if err != nil {
		return nil, errors.Wrap(err, "get peer dialog")
	}
	for _, d := range resp.Dialogs {
		if dialog, ok := d.(*tg.Dialog); ok {
			return dialog, nil
		}
	}
	return nil, errors.Wrap(ErrPeerNotFound, "dialog not available")
}

func (c *Client) markAsRead(ctx context.Context, peer tg.InputPeerClass) error {
	if channel, ok := inputChannel(peer); ok {
		_, err := c.api.ChannelsReadHistory(ctx, &tg.ChannelsReadHistoryRequest{
			Channel: channel,
		})
		return err
	}
	_, err := c.api.MessagesReadHistory(ctx, &tg.MessagesReadHistoryRequest{
		Peer: peer,
	})
	return err
}

// rawMessageByID получает одно сообщение по его ID
func (c *Client) rawMessageByID(ctx context.Context, peer tg.InputPeerClass, messageID int) (*tg.Message, historyEntities, error) {
	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: messageID}}

	var (
		resp tg.MessagesMessagesClass
		err  error
	)
	if channel, ok := inputChannel(peer); ok {
		resp, err = c.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
			Channel: channel,
			ID:      ids,
		})
	} else {
		resp, err = c.api.MessagesGetMessages(ctx, ids)
	}
	if err != nil {
		return nil, historyEntities{}, errors.Wrap(err, "get message")
	}

	raw, ent, err := splitHistory(resp)
	if err != nil {
		return nil, historyEntities{}, err
	}
	for _, msgClass := range raw {
		if msg, ok := msgClass.(*tg.Message); ok && msg.ID == messageID {
			return msg, ent, nil
		}
	}
	return nil, historyEntities{}, errors.Wrapf(ErrNotFound, "message %d", messageID)
}

// MessageByID возвращает одно сообщение в доменном представлении
func (c *Client) MessageByID(ctx context.Context, peer tg.InputPeerClass, messageID int) (*Message, error) {
	msg, ent, err := c.rawMessageByID(ctx, peer, messageID)
	if err != nil {
		return nil, err
	}
	converted := convertMessage(msg, ent)
	return &converted, nil
}
