package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tools возвращает статический реестр инструментов.
// Используется и при регистрации, и командой tools для вывода справки.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		sendMessageTool(),
		editMessageTool(),
		deleteMessageTool(),
		searchDialogsTool(),
		getDraftTool(),
		setDraftTool(),
		getMessagesTool(),
		mediaDownloadTool(),
		messageFromLinkTool(),
	}
}

// registerTools регистрирует инструменты с их обработчиками
func (s *Server) registerTools() {
	s.MCPServer.AddTool(sendMessageTool(), s.handleSendMessage)
	s.MCPServer.AddTool(editMessageTool(), s.handleEditMessage)
	s.MCPServer.AddTool(deleteMessageTool(), s.handleDeleteMessage)
	s.MCPServer.AddTool(searchDialogsTool(), s.handleSearchDialogs)
	s.MCPServer.AddTool(getDraftTool(), s.handleGetDraft)
	s.MCPServer.AddTool(setDraftTool(), s.handleSetDraft)
	s.MCPServer.AddTool(getMessagesTool(), s.handleGetMessages)
	s.MCPServer.AddTool(mediaDownloadTool(), s.handleMediaDownload)
	s.MCPServer.AddTool(messageFromLinkTool(), s.handleMessageFromLink)
}

const entityDescription = "Chat identifier: a username, a phone number in " +
	"international format (+1234567890), a numeric chat ID (including the " +
	"-100... form for channels), or the special value \"me\" for Saved Messages. " +
	"If unsure, use the search_dialogs tool first."

func sendMessageTool() mcp.Tool {
	return mcp.NewTool("send_message",
		mcp.WithDescription("Send a message to a Telegram user, group, or channel. "+
			"At least one of message or file_path must be provided."),
		mcp.WithString("entity", mcp.Required(), mcp.Description(entityDescription)),
		mcp.WithString("message", mcp.Description("The message text to send.")),
		mcp.WithString("file_path", mcp.Description("Path to a local file to attach.")),
		mcp.WithNumber("reply_to", mcp.Description("Message ID to reply to.")),
	)
}

func editMessageTool() mcp.Tool {
	return mcp.NewTool("edit_message",
		mcp.WithDescription("Edit the text of a previously sent message. "+
			"Only your own messages can be edited, and only within the limits Telegram allows."),
		mcp.WithString("entity", mcp.Required(), mcp.Description(entityDescription)),
		mcp.WithNumber("message_id", mcp.Required(), mcp.Description("ID of the message to edit.")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The new message text.")),
	)
}

func deleteMessageTool() mcp.Tool {
	return mcp.NewTool("delete_message",
		mcp.WithDescription("Delete one or more messages from a chat for all participants. "+
			"This action cannot be undone."),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("entity", mcp.Required(), mcp.Description(entityDescription)),
		mcp.WithArray("message_ids", mcp.Required(),
			mcp.Description("IDs of the messages to delete."),
			mcp.Items(map[string]any{"type": "number"}),
		),
	)
}

func searchDialogsTool() mcp.Tool {
	return mcp.NewTool("search_dialogs",
		mcp.WithDescription("Search your dialogs (users, groups, channels) by title or username. "+
			"The search is case-insensitive; no matches returns an empty list."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for in dialog titles and usernames.")),
		mcp.WithNumber("limit", mcp.DefaultNumber(10), mcp.Description("Maximum number of dialogs to return.")),
	)
}

func getDraftTool() mcp.Tool {
	return mcp.NewTool("get_draft",
		mcp.WithDescription("Get the draft message saved for a chat. Returns an empty string when there is no draft."),
		mcp.WithString("entity", mcp.Required(), mcp.Description(entityDescription)),
	)
}

func setDraftTool() mcp.Tool {
	return mcp.NewTool("set_draft",
		mcp.WithDescription("Save a draft message for a chat. An empty message clears the draft."),
		mcp.WithString("entity", mcp.Required(), mcp.Description(entityDescription)),
		mcp.WithString("message", mcp.Description("Draft text; empty clears the existing draft.")),
	)
}

func getMessagesTool() mcp.Tool {
	return mcp.NewTool("get_messages",
		mcp.WithDescription("Get messages from a chat, newest first."),
		mcp.WithString("entity", mcp.Required(), mcp.Description(entityDescription)),
		mcp.WithNumber("limit", mcp.DefaultNumber(10), mcp.Description("Maximum number of messages to return.")),
		mcp.WithString("start_date", mcp.Description("Only messages at or after this RFC 3339 timestamp.")),
		mcp.WithString("end_date", mcp.Description("Only messages at or before this RFC 3339 timestamp.")),
		mcp.WithBoolean("unread", mcp.Description("Return only unread incoming messages.")),
		mcp.WithBoolean("mark_as_read", mcp.Description("Mark the fetched history as read.")),
	)
}

func mediaDownloadTool() mcp.Tool {
	return mcp.NewTool("media_download",
		mcp.WithDescription("Download media attached to a message into a local file with a unique name. "+
			"Fails if the message has no media."),
		mcp.WithString("entity", mcp.Required(), mcp.Description(entityDescription)),
		mcp.WithNumber("message_id", mcp.Required(), mcp.Description("ID of the message containing the media.")),
		mcp.WithString("path", mcp.Description("Destination directory; defaults to the downloads directory.")),
	)
}

func messageFromLinkTool() mcp.Tool {
	return mcp.NewTool("message_from_link",
		mcp.WithDescription("Resolve a t.me message link (public t.me/<username>/<id> or private t.me/c/<channel>/<id>) "+
			"and return the message."),
		mcp.WithString("link", mcp.Required(), mcp.Description("Link to the message.")),
	)
}
