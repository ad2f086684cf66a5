package telegram

import "errors"

// Ошибки уровня домена. Обработчики инструментов переводят их
// в понятные пользователю описания.
var (
	// ErrPeerNotFound — чат/пользователь не найден среди доступных диалогов.
	ErrPeerNotFound = errors.New("peer not found")
	// ErrNotFound — сообщение не найдено или уже удалено.
	ErrNotFound = errors.New("message not found")
	// ErrNoMedia — сообщение не содержит медиа для скачивания.
	ErrNoMedia = errors.New("message has no media")
)

// Dialog содержит информацию о диалоге (пользователь, группа или канал)
type Dialog struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"` // user, bot, chat, supergroup, channel
	Username    string `json:"username,omitempty"`
	UnreadCount int    `json:"unread_count"`
}

// Sender содержит информацию об отправителе сообщения
type Sender struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	IsBot     bool   `json:"is_bot,omitempty"`
}

// TextEntity представляет форматирование в тексте сообщения
type TextEntity struct {
	Type     string `json:"type"`
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
	URL      string `json:"url,omitempty"`
	UserID   int64  `json:"user_id,omitempty"`
	Language string `json:"language,omitempty"`
}

// Message содержит информацию о сообщении
type Message struct {
	ID           int          `json:"id"`
	Date         int          `json:"date"`
	Text         string       `json:"text,omitempty"`
	IsOutgoing   bool         `json:"is_outgoing,omitempty"`
	IsMentioned  bool         `json:"is_mentioned,omitempty"`
	MediaType    string       `json:"media_type,omitempty"`
	Sender       *Sender      `json:"sender,omitempty"`
	ForwardFrom  *Sender      `json:"forward_from,omitempty"`
	ReplyToMsgID int          `json:"reply_to_msg_id,omitempty"`
	Entities     []TextEntity `json:"entities,omitempty"`
	Views        int          `json:"views,omitempty"`
	EditDate     int          `json:"edit_date,omitempty"`
}

// DownloadedMedia содержит результат скачивания медиа
type DownloadedMedia struct {
	Path      string `json:"path"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size,omitempty"`
}

// HistoryOptions — фильтры для получения истории сообщений.
// Нулевые значения означают "без фильтра".
type HistoryOptions struct {
	Limit      int   // максимум сообщений (по умолчанию 10)
	StartDate  int64 // unix time, сообщения не старше
	EndDate    int64 // unix time, сообщения не новее
	UnreadOnly bool  // только непрочитанные входящие
	MarkAsRead bool  // пометить полученные сообщения прочитанными
}
