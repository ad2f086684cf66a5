package telegram

import (
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
)

func TestHistoryRequestDateWindow(t *testing.T) {
	peer := &tg.InputPeerUser{UserID: 100}

	// Без окна дат запрос начинается с головы истории
	req := historyRequest(peer, HistoryOptions{}, 10)
	assert.Zero(t, req.OffsetDate)
	assert.Equal(t, 10, req.Limit)

	// Верхняя граница окна становится смещением: даже если все новые
	// сообщения чата свежее end_date, выборка начинается внутри окна
	req = historyRequest(peer, HistoryOptions{StartDate: 1000, EndDate: 2000}, 10)
	assert.Equal(t, 2001, req.OffsetDate)

	// Одна нижняя граница смещения не дает, фильтр работает постранично
	req = historyRequest(peer, HistoryOptions{StartDate: 1000}, 10)
	assert.Zero(t, req.OffsetDate)
}

func TestHistoryExhausted(t *testing.T) {
	batch := []Message{{ID: 30, Date: 300}, {ID: 20, Date: 200}, {ID: 10, Date: 100}}

	// Неполная страница — история кончилась
	assert.True(t, historyExhausted(batch, 3, 10, HistoryOptions{}, 0))

	// Полная страница без фильтров — можно листать дальше
	assert.False(t, historyExhausted(batch, 3, 3, HistoryOptions{}, 0))

	// Самое старое сообщение страницы вышло за нижнюю границу окна
	assert.True(t, historyExhausted(batch, 3, 3, HistoryOptions{StartDate: 150}, 0))
	assert.False(t, historyExhausted(batch, 3, 3, HistoryOptions{StartDate: 50}, 0))

	// Для фильтра непрочитанных все старше границы прочитанного
	assert.True(t, historyExhausted(batch, 3, 3, HistoryOptions{UnreadOnly: true}, 15))
	assert.False(t, historyExhausted(batch, 3, 3, HistoryOptions{UnreadOnly: true}, 5))

	// Страница из одних служебных сообщений не останавливает обход
	assert.False(t, historyExhausted(nil, 3, 3, HistoryOptions{StartDate: 150}, 0))
}
