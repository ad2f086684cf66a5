package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"telegram-mcp/telegram"
)

// handleSendMessage отправляет сообщение и/или файл
func (s *Server) handleSendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entity := mcp.ParseString(req, "entity", "")
	if entity == "" {
		return mcp.NewToolResultError("entity is required"), nil
	}

	message := mcp.ParseString(req, "message", "")
	filePath := mcp.ParseString(req, "file_path", "")
	if message == "" && filePath == "" {
		return mcp.NewToolResultError("either message or file_path is required"), nil
	}

	replyTo := mcp.ParseInt(req, "reply_to", 0)

	messageID, err := s.tg.SendMessage(ctx, entity, message, filePath, replyTo)
	if err != nil {
		return s.failure("Failed to send message", err), nil
	}

	return jsonResult(map[string]any{
		"message_id": messageID,
		"entity":     entity,
	})
}

// handleEditMessage заменяет текст сообщения
func (s *Server) handleEditMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entity := mcp.ParseString(req, "entity", "")
	if entity == "" {
		return mcp.NewToolResultError("entity is required"), nil
	}

	messageID := mcp.ParseInt(req, "message_id", 0)
	if messageID <= 0 {
		return mcp.NewToolResultError("message_id is required"), nil
	}

	message := mcp.ParseString(req, "message", "")
	if message == "" {
		return mcp.NewToolResultError("message is required"), nil
	}

	if err := s.tg.EditMessage(ctx, entity, messageID, message); err != nil {
		return s.failure("Failed to edit message", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message %d edited", messageID)), nil
}

// handleDeleteMessage удаляет сообщения по списку ID
func (s *Server) handleDeleteMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entity := mcp.ParseString(req, "entity", "")
	if entity == "" {
		return mcp.NewToolResultError("entity is required"), nil
	}

	messageIDs, ok := parseIntSlice(req.GetArguments()["message_ids"])
	if !ok || len(messageIDs) == 0 {
		return mcp.NewToolResultError("message_ids must be a non-empty array of numbers"), nil
	}

	deleted, err := s.tg.DeleteMessages(ctx, entity, messageIDs)
	if err != nil {
		return s.failure("Failed to delete messages", err), nil
	}

	return jsonResult(map[string]any{
		"deleted": deleted,
		"entity":  entity,
	})
}

// handleSearchDialogs ищет диалоги по названию или username
func (s *Server) handleSearchDialogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := mcp.ParseString(req, "query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	limit := mcp.ParseInt(req, "limit", 10)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be greater than 0"), nil
	}

	dialogs, err := s.tg.SearchDialogs(ctx, query, limit)
	if err != nil {
		return s.failure("Failed to search dialogs", err), nil
	}

	return jsonResult(map[string]any{
		"dialogs": dialogs,
		"count":   len(dialogs),
	})
}

// handleGetDraft возвращает черновик чата
func (s *Server) handleGetDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entity := mcp.ParseString(req, "entity", "")
	if entity == "" {
		return mcp.NewToolResultError("entity is required"), nil
	}

	draft, err := s.tg.GetDraft(ctx, entity)
	if err != nil {
		return s.failure("Failed to get draft", err), nil
	}

	return jsonResult(map[string]any{
		"draft":  draft,
		"entity": entity,
	})
}

// handleSetDraft сохраняет или очищает черновик
func (s *Server) handleSetDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entity := mcp.ParseString(req, "entity", "")
	if entity == "" {
		return mcp.NewToolResultError("entity is required"), nil
	}

	message := mcp.ParseString(req, "message", "")

	if err := s.tg.SaveDraft(ctx, entity, message); err != nil {
		return s.failure("Failed to set draft", err), nil
	}

	if message == "" {
		return mcp.NewToolResultText(fmt.Sprintf("Draft cleared for %s", entity)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Draft saved for %s", entity)), nil
}

// handleGetMessages возвращает историю чата с фильтрами
func (s *Server) handleGetMessages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entity := mcp.ParseString(req, "entity", "")
	if entity == "" {
		return mcp.NewToolResultError("entity is required"), nil
	}

	opts := telegram.HistoryOptions{
		Limit:      mcp.ParseInt(req, "limit", 10),
		UnreadOnly: mcp.ParseBoolean(req, "unread", false),
		MarkAsRead: mcp.ParseBoolean(req, "mark_as_read", false),
	}

	startDate, ok := parseDate(req, "start_date")
	if !ok {
		return mcp.NewToolResultError("start_date must be an RFC 3339 timestamp"), nil
	}
	endDate, ok := parseDate(req, "end_date")
	if !ok {
		return mcp.NewToolResultError("end_date must be an RFC 3339 timestamp"), nil
	}
	opts.StartDate, opts.EndDate = startDate, endDate

	if opts.StartDate > 0 && opts.EndDate > 0 && opts.StartDate > opts.EndDate {
		return mcp.NewToolResultError("start_date is after end_date"), nil
	}

	messages, err := s.tg.GetMessages(ctx, entity, opts)
	if err != nil {
		return s.failure("Failed to get messages", err), nil
	}

	return jsonResult(map[string]any{
		"messages": messages,
		"count":    len(messages),
		"entity":   entity,
	})
}

// handleMediaDownload скачивает медиа из сообщения
func (s *Server) handleMediaDownload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entity := mcp.ParseString(req, "entity", "")
	if entity == "" {
		return mcp.NewToolResultError("entity is required"), nil
	}

	messageID := mcp.ParseInt(req, "message_id", 0)
	if messageID <= 0 {
		return mcp.NewToolResultError("message_id is required"), nil
	}

	destDir := mcp.ParseString(req, "path", "")

	media, err := s.tg.DownloadMedia(ctx, entity, messageID, destDir)
	if err != nil {
		return s.failure("Failed to download media", err), nil
	}

	return jsonResult(media)
}

// handleMessageFromLink получает сообщение по ссылке.
// Форма ссылки проверяется до какого-либо сетевого запроса.
func (s *Server) handleMessageFromLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link := mcp.ParseString(req, "link", "")
	if link == "" {
		return mcp.NewToolResultError("link is required"), nil
	}

	if _, err := telegram.ParseMessageLink(link); err != nil {
		return mcp.NewToolResultErrorFromErr("Invalid message link", err), nil
	}

	message, err := s.tg.MessageFromLink(ctx, link)
	if err != nil {
		return s.failure("Failed to get message from link", err), nil
	}

	return jsonResult(message)
}

// failure переводит ошибку библиотеки в результат-ошибку инструмента.
// Ошибки никогда не уходят во фреймворк как Go-ошибки: одно неудачное
// обращение не должно прерывать обслуживание.
func (s *Server) failure(action string, err error) *mcp.CallToolResult {
	s.log.Warn("Tool call failed", zap.String("action", action), zap.Error(err))

	switch {
	case errors.Is(err, telegram.ErrPeerNotFound):
		return mcp.NewToolResultErrorFromErr(action+": chat not found", err)
	case errors.Is(err, telegram.ErrNotFound):
		return mcp.NewToolResultErrorFromErr(action+": message not found", err)
	case errors.Is(err, telegram.ErrNoMedia):
		return mcp.NewToolResultErrorFromErr(action+": message has no media", err)
	case errors.Is(err, context.Canceled):
		return mcp.NewToolResultError(action + ": call canceled")
	}
	return mcp.NewToolResultErrorFromErr(action, err)
}

// jsonResult сериализует успешный результат в текстовый контент
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to serialize result", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// parseIntSlice приводит аргумент-массив JSON к списку int
func parseIntSlice(value any) ([]int, bool) {
	raw, ok := value.([]any)
	if !ok {
		return nil, false
	}
	result := make([]int, 0, len(raw))
	for _, item := range raw {
		switch n := item.(type) {
		case float64:
			result = append(result, int(n))
		case int:
			result = append(result, n)
		default:
			return nil, false
		}
	}
	return result, true
}

// parseDate разбирает необязательный RFC 3339 параметр в unix time
func parseDate(req mcp.CallToolRequest, key string) (int64, bool) {
	value := mcp.ParseString(req, key, "")
	if value == "" {
		return 0, true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}
