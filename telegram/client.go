package telegram

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/contrib/bg"
	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config содержит параметры для создания клиента
type Config struct {
	AppID        int
	AppHash      string
	SessionFile  string
	DownloadsDir string
	Logger       *zap.Logger
}

// Client — обертка над gotd клиентом. Держит единственную авторизованную
// сессию процесса; создается один раз при старте и передается во все
// обработчики инструментов.
type Client struct {
	client *telegram.Client
	api    *tg.Client
	log    *zap.Logger
	stop   bg.StopFunc

	downloadsDir string
}

// New создает клиент с файловым хранилищем сессии.
// Flood wait и ограничение частоты запросов обрабатываются
// middleware, а не кодом адаптера.
func New(cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	waiter := floodwait.NewSimpleWaiter()

	client := telegram.NewClient(cfg.AppID, cfg.AppHash, telegram.Options{
		SessionStorage: &telegram.FileSessionStorage{
			Path: cfg.SessionFile,
		},
		Logger: log.Named("gotd"),
		Middlewares: []telegram.Middleware{
			waiter,
			ratelimit.New(rate.Every(100*time.Millisecond), 5),
		},
	})

	return &Client{
		client:       client,
		api:          client.API(),
		log:          log,
		downloadsDir: cfg.DownloadsDir,
	}
}

// Connect запускает клиент в фоне и блокирует до установки соединения.
// Возвращает ошибку, если соединение не удалось установить.
func (c *Client) Connect(ctx context.Context) error {
	stop, err := bg.Connect(c.client, bg.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	c.stop = stop
	return nil
}

// Close останавливает фоновый клиент
func (c *Client) Close() error {
	if c.stop == nil {
		return nil
	}
	return c.stop()
}

// Authorized проверяет, есть ли у сессии действующая авторизация
func (c *Client) Authorized(ctx context.Context) (bool, error) {
	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		return false, errors.Wrap(err, "auth status")
	}
	return status.Authorized, nil
}

// Login выполняет интерактивную авторизацию: запускает клиент,
// проходит цепочку телефон -> код -> пароль 2FA (если включен)
// и сохраняет сессию. Возвращает авторизованного пользователя.
func (c *Client) Login(ctx context.Context, authenticator auth.UserAuthenticator) (*tg.User, error) {
	var self *tg.User

	err := c.client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(authenticator, auth.SendCodeOptions{})
		if err := c.client.Auth().IfNecessary(ctx, flow); err != nil {
			return errors.Wrap(err, "auth flow")
		}

		status, err := c.client.Auth().Status(ctx)
		if err != nil {
			return errors.Wrap(err, "auth status")
		}
		if !status.Authorized {
			return errors.New("not authorized, check credentials and try again")
		}

		user, err := c.client.Self(ctx)
		if err != nil {
			return errors.Wrap(err, "get self")
		}
		self = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return self, nil
}

// randomID возвращает случайный идентификатор для отправки сообщений
func (c *Client) randomID() (int64, error) {
	id, err := c.client.RandInt64()
	if err != nil {
		return 0, errors.Wrap(err, "rand")
	}
	return id, nil
}
