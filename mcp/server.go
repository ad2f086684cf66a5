package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"telegram-mcp/telegram"
)

// Telegram — операции клиента, которые нужны обработчикам инструментов.
// Авторизованная сессия получается один раз при старте и передается
// сюда явно; обработчики не держат собственного состояния.
type Telegram interface {
	SendMessage(ctx context.Context, entity, text, filePath string, replyTo int) (int, error)
	EditMessage(ctx context.Context, entity string, messageID int, text string) error
	DeleteMessages(ctx context.Context, entity string, messageIDs []int) (int, error)
	SearchDialogs(ctx context.Context, query string, limit int) ([]telegram.Dialog, error)
	GetDraft(ctx context.Context, entity string) (string, error)
	SaveDraft(ctx context.Context, entity, text string) error
	GetMessages(ctx context.Context, entity string, opts telegram.HistoryOptions) ([]telegram.Message, error)
	DownloadMedia(ctx context.Context, entity string, messageID int, destDir string) (*telegram.DownloadedMedia, error)
	MessageFromLink(ctx context.Context, link string) (*telegram.Message, error)
}

// serverName — идентичность сервера в MCP рукопожатии,
// совпадает с именем модуля и бинарника
const serverName = "telegram-mcp"

// Server — MCP сервер с зарегистрированными инструментами Telegram
type Server struct {
	MCPServer *server.MCPServer
	tg        Telegram
	log       *zap.Logger
}

// NewServer создает MCP сервер и регистрирует все инструменты
func NewServer(tg Telegram, version string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		MCPServer: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(false),
			// Паника в обработчике превращается в ошибку вызова,
			// а не роняет весь сервер
			server.WithRecovery(),
		),
		tg:  tg,
		log: log,
	}
	s.registerTools()
	return s
}

// Start обслуживает запросы по stdio до отмены контекста.
// stdout занят транспортом, поэтому все логи идут в stderr.
func (s *Server) Start(ctx context.Context) error {
	stdio := server.NewStdioServer(s.MCPServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.log))

	s.log.Info("Serving MCP over stdio")
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
