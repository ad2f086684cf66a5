package telegram

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// SaveDraft сохраняет черновик для чата. Пустой текст очищает черновик —
// это штатный способ удаления, отдельного запроса у API нет.
func (c *Client) SaveDraft(ctx context.Context, entity, text string) error {
	peer, err := c.ResolvePeer(ctx, entity)
	if err != nil {
		return err
	}

	if _, err := c.api.MessagesSaveDraft(ctx, &tg.MessagesSaveDraftRequest{
		Peer:    peer,
		Message: text,
	}); err != nil {
		return errors.Wrap(err, "save draft")
	}

	c.log.Info("Draft saved", zap.String("entity", entity), zap.Bool("cleared", text == ""))
	return nil
}

// GetDraft возвращает текст черновика для чата.
// Отсутствие черновика — не ошибка, возвращается пустая строка.
func (c *Client) GetDraft(ctx context.Context, entity string) (string, error) {
	peer, err := c.ResolvePeer(ctx, entity)
	if err != nil {
		return "", err
	}

	// У API нет запроса черновика по конкретному пиру,
	// поэтому берем все и ищем нужный
	updates, err := c.api.MessagesGetAllDrafts(ctx)
	if err != nil {
		return "", errors.Wrap(err, "get drafts")
	}

	var selfID int64
	if _, ok := peer.(*tg.InputPeerSelf); ok {
		self, err := c.client.Self(ctx)
		if err != nil {
			return "", errors.Wrap(err, "get self")
		}
		selfID = self.ID
	}
	target := peerTargetID(peer, selfID)

	var raw []tg.UpdateClass
	switch u := updates.(type) {
	case *tg.Updates:
		raw = u.Updates
	case *tg.UpdatesCombined:
		raw = u.Updates
	}

	for _, upd := range raw {
		draftUpdate, ok := upd.(*tg.UpdateDraftMessage)
		if !ok || peerID(draftUpdate.Peer) != target {
			continue
		}
		if draft, ok := draftUpdate.Draft.(*tg.DraftMessage); ok {
			return draft.Message, nil
		}
		return "", nil
	}

	return "", nil
}
