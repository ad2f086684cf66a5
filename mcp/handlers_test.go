package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"telegram-mcp/telegram"
)

// fakeTelegram хранит сообщения и черновики в памяти и считает вызовы
type fakeTelegram struct {
	calls    int
	nextID   int
	messages map[string][]telegram.Message
	drafts   map[string]string

	searchResult []telegram.Dialog
	deleteErr    error
	mediaErr     error
	linkResult   *telegram.Message
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{
		nextID:   1,
		messages: make(map[string][]telegram.Message),
		drafts:   make(map[string]string),
	}
}

func (f *fakeTelegram) SendMessage(_ context.Context, entity, text, _ string, _ int) (int, error) {
	f.calls++
	id := f.nextID
	f.nextID++
	f.messages[entity] = append([]telegram.Message{{ID: id, Text: text, IsOutgoing: true}}, f.messages[entity]...)
	return id, nil
}

func (f *fakeTelegram) EditMessage(_ context.Context, entity string, messageID int, text string) error {
	f.calls++
	for i, msg := range f.messages[entity] {
		if msg.ID == messageID {
			f.messages[entity][i].Text = text
			return nil
		}
	}
	return telegram.ErrNotFound
}

func (f *fakeTelegram) DeleteMessages(_ context.Context, _ string, messageIDs []int) (int, error) {
	f.calls++
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return len(messageIDs), nil
}

func (f *fakeTelegram) SearchDialogs(_ context.Context, _ string, _ int) ([]telegram.Dialog, error) {
	f.calls++
	return f.searchResult, nil
}

func (f *fakeTelegram) GetDraft(_ context.Context, entity string) (string, error) {
	f.calls++
	return f.drafts[entity], nil
}

func (f *fakeTelegram) SaveDraft(_ context.Context, entity, text string) error {
	f.calls++
	if text == "" {
		delete(f.drafts, entity)
		return nil
	}
	f.drafts[entity] = text
	return nil
}

func (f *fakeTelegram) GetMessages(_ context.Context, entity string, opts telegram.HistoryOptions) ([]telegram.Message, error) {
	f.calls++
	messages := f.messages[entity]
	if opts.Limit > 0 && len(messages) > opts.Limit {
		messages = messages[:opts.Limit]
	}
	return messages, nil
}

func (f *fakeTelegram) DownloadMedia(_ context.Context, _ string, _ int, _ string) (*telegram.DownloadedMedia, error) {
	f.calls++
	if f.mediaErr != nil {
		return nil, f.mediaErr
	}
	return &telegram.DownloadedMedia{Path: "/tmp/file.jpg", MediaType: "photo", Size: 42}, nil
}

func (f *fakeTelegram) MessageFromLink(_ context.Context, _ string) (*telegram.Message, error) {
	f.calls++
	if f.linkResult == nil {
		return nil, telegram.ErrNotFound
	}
	return f.linkResult, nil
}

func newTestServer(t *testing.T) (*Server, *fakeTelegram) {
	t.Helper()
	fake := newFakeTelegram()
	return NewServer(fake, "test", zap.NewNop()), fake
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	return payload
}

func TestHandlersRejectMissingParams(t *testing.T) {
	tests := []struct {
		name string
		call func(s *Server, ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args map[string]any
	}{
		{"send without entity", (*Server).handleSendMessage, map[string]any{"message": "hi"}},
		{"send without message and file", (*Server).handleSendMessage, map[string]any{"entity": "me"}},
		{"edit without message_id", (*Server).handleEditMessage, map[string]any{"entity": "me", "message": "hi"}},
		{"edit without message", (*Server).handleEditMessage, map[string]any{"entity": "me", "message_id": 1}},
		{"delete without ids", (*Server).handleDeleteMessage, map[string]any{"entity": "me"}},
		{"delete with empty ids", (*Server).handleDeleteMessage, map[string]any{"entity": "me", "message_ids": []any{}}},
		{"search without query", (*Server).handleSearchDialogs, map[string]any{}},
		{"get draft without entity", (*Server).handleGetDraft, map[string]any{}},
		{"set draft without entity", (*Server).handleSetDraft, map[string]any{"message": "hi"}},
		{"history without entity", (*Server).handleGetMessages, map[string]any{}},
		{"history with bad date", (*Server).handleGetMessages, map[string]any{"entity": "me", "start_date": "yesterday"}},
		{"media without message_id", (*Server).handleMediaDownload, map[string]any{"entity": "me"}},
		{"link without link", (*Server).handleMessageFromLink, map[string]any{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, fake := newTestServer(t)

			result, err := tc.call(s, context.Background(), request(tc.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			// Проверка параметров происходит до обращения к клиенту
			assert.Zero(t, fake.calls)
		})
	}
}

func TestSendAndGetMessagesRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleSendMessage(context.Background(), request(map[string]any{
		"entity":  "alice",
		"message": "hello there",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	sent := decodeResult(t, result)
	assert.Equal(t, float64(1), sent["message_id"])
	assert.Equal(t, "alice", sent["entity"])

	result, err = s.handleGetMessages(context.Background(), request(map[string]any{
		"entity": "alice",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	history := decodeResult(t, result)
	assert.Equal(t, float64(1), history["count"])
	messages := history["messages"].([]any)
	first := messages[0].(map[string]any)
	assert.Equal(t, "hello there", first["text"])
}

func TestDraftSetAndGet(t *testing.T) {
	s, fake := newTestServer(t)

	result, err := s.handleSetDraft(context.Background(), request(map[string]any{
		"entity":  "alice",
		"message": "unfinished thought",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = s.handleGetDraft(context.Background(), request(map[string]any{"entity": "alice"}))
	require.NoError(t, err)
	payload := decodeResult(t, result)
	assert.Equal(t, "unfinished thought", payload["draft"])

	// Пустое сообщение очищает черновик
	result, err = s.handleSetDraft(context.Background(), request(map[string]any{"entity": "alice"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "cleared")
	assert.Empty(t, fake.drafts)

	result, err = s.handleGetDraft(context.Background(), request(map[string]any{"entity": "alice"}))
	require.NoError(t, err)
	payload = decodeResult(t, result)
	assert.Equal(t, "", payload["draft"])
}

func TestDeleteMessageNotFound(t *testing.T) {
	s, fake := newTestServer(t)
	fake.deleteErr = telegram.ErrNotFound

	result, err := s.handleDeleteMessage(context.Background(), request(map[string]any{
		"entity":      "alice",
		"message_ids": []any{float64(99)},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "message not found")
}

func TestSearchDialogsEmptyResult(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleSearchDialogs(context.Background(), request(map[string]any{
		"query": "nobody",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := decodeResult(t, result)
	assert.Equal(t, float64(0), payload["count"])
}

func TestMediaDownloadNoMedia(t *testing.T) {
	s, fake := newTestServer(t)
	fake.mediaErr = telegram.ErrNoMedia

	result, err := s.handleMediaDownload(context.Background(), request(map[string]any{
		"entity":     "alice",
		"message_id": 5,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "no media")
}

func TestMessageFromLinkValidatesBeforeCall(t *testing.T) {
	s, fake := newTestServer(t)

	result, err := s.handleMessageFromLink(context.Background(), request(map[string]any{
		"link": "https://example.com/not/telegram",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Zero(t, fake.calls)
}

func TestMessageFromLinkSuccess(t *testing.T) {
	s, fake := newTestServer(t)
	fake.linkResult = &telegram.Message{ID: 7, Text: "linked"}

	result, err := s.handleMessageFromLink(context.Background(), request(map[string]any{
		"link": "https://t.me/somechannel/7",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var msg telegram.Message
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &msg))
	assert.Equal(t, 7, msg.ID)
	assert.Equal(t, "linked", msg.Text)
}

func TestParseIntSlice(t *testing.T) {
	ids, ok := parseIntSlice([]any{float64(1), float64(2), 3})
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, ids)

	_, ok = parseIntSlice([]any{"one"})
	assert.False(t, ok)

	_, ok = parseIntSlice("not a slice")
	assert.False(t, ok)
}
