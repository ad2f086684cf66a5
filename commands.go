package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"telegram-mcp/mcp"
	"telegram-mcp/telegram"
)

// loginCmd выполняет интерактивную авторизацию и сохраняет сессию
func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate the Telegram account and save the session",
		Long: `Interactively authenticates a Telegram account.

API credentials are read from the API_ID and API_HASH environment
variables and prompted for when missing. You will then be asked for
your phone number, the verification code sent by Telegram, and the
two-factor password if one is set on the account.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := LoadConfig()
			if err := cfg.EnsureStateDir(); err != nil {
				return err
			}

			fmt.Println("Telegram authentication")
			fmt.Println("Get your API credentials at https://my.telegram.org/apps")
			fmt.Println()

			// Один reader на весь диалог: ввод через pipe терялся бы
			// между отдельными буферами
			stdin := bufio.NewReader(os.Stdin)

			appID, appHash, err := credentials(cfg, stdin)
			if err != nil {
				return err
			}

			// При интерактивном входе подробные логи клиента только мешают
			logger, err := buildLogger("warn")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			client := telegram.New(telegram.Config{
				AppID:        appID,
				AppHash:      appHash,
				SessionFile:  cfg.SessionFile(),
				DownloadsDir: cfg.DownloadsDir(),
				Logger:       logger,
			})

			user, err := client.Login(cmd.Context(), &telegram.PromptAuthenticator{
				In:  stdin,
				Out: os.Stdout,
			})
			if err != nil {
				return err
			}

			name := strings.TrimSpace(user.FirstName + " " + user.LastName)
			fmt.Println()
			fmt.Printf("Logged in as %s", name)
			if user.Username != "" {
				fmt.Printf(" (@%s)", user.Username)
			}
			fmt.Println()
			fmt.Printf("Session saved to %s\n", cfg.SessionFile())
			return nil
		},
	}
}

// credentials берет API ID и hash из конфигурации или запрашивает с клавиатуры
func credentials(cfg Config, reader *bufio.Reader) (int, string, error) {
	appID, appHash := cfg.AppID, cfg.AppHash

	if appID == 0 {
		line, err := promptLine(reader, "API ID: ")
		if err != nil {
			return 0, "", err
		}
		appID, err = strconv.Atoi(line)
		if err != nil {
			return 0, "", errors.New("API ID must be a number")
		}
	}

	if appHash == "" {
		line, err := promptLine(reader, "API hash: ")
		if err != nil {
			return 0, "", err
		}
		appHash = line
	}

	if appID == 0 || appHash == "" {
		return 0, "", errors.New("API ID and API hash are required")
	}
	return appID, appHash, nil
}

func promptLine(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "read input")
	}
	return strings.TrimSpace(line), nil
}

// startCmd запускает MCP сервер поверх сохраненной сессии
func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the MCP server over stdio",
		Long: `Loads the saved session, connects to Telegram and serves MCP tool
calls over stdio until terminated.

Only one running process may use a session file at a time: the session
storage is not safe for concurrent access from several processes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := LoadConfig()
			if err := cfg.ValidateCredentials(); err != nil {
				return err
			}
			if !cfg.SessionExists() {
				return errors.Errorf("no session found at %s, run \"telegram-mcp login\" first", cfg.SessionFile())
			}

			logger, err := buildLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			client := telegram.New(telegram.Config{
				AppID:        cfg.AppID,
				AppHash:      cfg.AppHash,
				SessionFile:  cfg.SessionFile(),
				DownloadsDir: cfg.DownloadsDir(),
				Logger:       logger,
			})

			ctx := cmd.Context()
			if err := client.Connect(ctx); err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			authorized, err := client.Authorized(ctx)
			if err != nil {
				return err
			}
			if !authorized {
				return errors.New("session is not authorized, run \"telegram-mcp login\" again")
			}

			logger.Info("Telegram client connected")

			srv := mcp.NewServer(client, version, logger)
			if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// toolsCmd печатает реестр инструментов без подключения к Telegram
func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available MCP tools",
		Run: func(_ *cobra.Command, _ []string) {
			for _, tool := range mcp.Tools() {
				fmt.Printf("%s\n", tool.Name)
				fmt.Printf("    %s\n", tool.Description)

				required := make(map[string]bool, len(tool.InputSchema.Required))
				for _, name := range tool.InputSchema.Required {
					required[name] = true
				}

				names := make([]string, 0, len(tool.InputSchema.Properties))
				for name := range tool.InputSchema.Properties {
					names = append(names, name)
				}
				sort.Strings(names)

				for _, name := range names {
					details, _ := tool.InputSchema.Properties[name].(map[string]any)
					paramType, _ := details["type"].(string)
					marker := ""
					if required[name] {
						marker = " (required)"
					}
					fmt.Printf("    - %s: %s%s\n", name, paramType, marker)
				}
				fmt.Println()
			}
		},
	}
}

// versionCmd печатает версию
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "telegram-mcp version %s\n", version)
		},
	}
}
