// Package main provides the Tunegram CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tunegram/internal/catalog"
	"tunegram/internal/chat"
	"tunegram/internal/chat/telegram"
	"tunegram/internal/core"
	httpserver "tunegram/internal/http"
	"tunegram/internal/i18n"
)

const (
	defaultServerHost = "0.0.0.0"
	envPrefix         = "TUNEGRAM"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tunegram",
	Short: "Tunegram - Telegram music catalog download bot",
	Long: `Tunegram is a service that listens to Telegram messages, searches a music
catalog by free text or by shared link, and delivers the requested track as an
audio file back into the chat.`,
	RunE: runTunegram,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("telegram-bot-token", "", "Telegram bot token")
	rootCmd.PersistentFlags().String("catalog-token", "", "Music catalog API token (empty runs demo tier only)")
	rootCmd.PersistentFlags().String("catalog-base-url", "", "Music catalog API base URL")
	rootCmd.PersistentFlags().String("catalog-link-host", "", "Host fragment that marks inbound catalog links")
	rootCmd.PersistentFlags().String("allowed-users", "", "Comma-separated user IDs with full-tier access (empty allows everyone)")
	rootCmd.PersistentFlags().Int64("operator-id", 0, "Telegram user ID to notify about service events (0 disables)")
	rootCmd.PersistentFlags().String("server-host", defaultServerHost, "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	rootCmd.PersistentFlags().Int("search-limit", core.DefaultSearchLimit, "Maximum number of search candidates offered")
	rootCmd.PersistentFlags().Int("delivery-max-attempts", core.DefaultDeliveryMaxAttempts, "Total audio delivery attempts")
	rootCmd.PersistentFlags().Int("delivery-retry-delay-secs", core.DefaultDeliveryRetryDelaySecs, "Delay before the first delivery retry in seconds")
	rootCmd.PersistentFlags().String("download-dir", ".", "Directory for temporary audio downloads")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	rootCmd.PersistentFlags().String("language", i18n.DefaultLanguage, fmt.Sprintf("Bot language (%s)", supportedLangs))
	rootCmd.PersistentFlags().Int("flood-limit-per-minute", core.DefaultFloodLimitPerMinute, "Maximum messages per user per minute")
	rootCmd.PersistentFlags().Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Load .env file explicitly using gotenv
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		// Don't exit if .env file doesn't exist, just warn
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureTelegram(cfg)
	configureCatalog(cfg)
	configureAccess(cfg)
	configureServer(cfg)
	configureApp(cfg)

	return cfg
}

func configureTelegram(cfg *core.Config) {
	cfg.Telegram.BotToken = viper.GetString("telegram-bot-token")
}

func configureCatalog(cfg *core.Config) {
	cfg.Catalog.Token = viper.GetString("catalog-token")
	if baseURL := viper.GetString("catalog-base-url"); baseURL != "" {
		cfg.Catalog.BaseURL = baseURL
	}
	if linkHost := viper.GetString("catalog-link-host"); linkHost != "" {
		cfg.Catalog.LinkHost = linkHost
	}
}

func configureAccess(cfg *core.Config) {
	allowed, err := parseUserIDs(viper.GetString("allowed-users"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring malformed allowed-users value: %v\n", err)
		allowed = nil
	}
	cfg.Access.AllowedUsers = allowed
	cfg.Access.OperatorID = viper.GetInt64("operator-id")
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")
}

func configureApp(cfg *core.Config) {
	cfg.App.SearchLimit = viper.GetInt("search-limit")
	if cfg.App.SearchLimit <= 0 {
		cfg.App.SearchLimit = core.DefaultSearchLimit
	}

	cfg.App.DeliveryMaxAttempts = viper.GetInt("delivery-max-attempts")
	if cfg.App.DeliveryMaxAttempts <= 0 {
		cfg.App.DeliveryMaxAttempts = core.DefaultDeliveryMaxAttempts
	}

	cfg.App.DeliveryRetryDelaySecs = viper.GetInt("delivery-retry-delay-secs")
	if cfg.App.DeliveryRetryDelaySecs <= 0 {
		cfg.App.DeliveryRetryDelaySecs = core.DefaultDeliveryRetryDelaySecs
	}

	cfg.App.DownloadDir = viper.GetString("download-dir")
	if cfg.App.DownloadDir == "" {
		cfg.App.DownloadDir = "."
	}

	// Language configuration with validation
	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}

	supportedLanguages := i18n.GetSupportedLanguages()
	isSupported := false
	for _, lang := range supportedLanguages {
		if cfg.App.Language == lang {
			isSupported = true
			break
		}
	}
	if !isSupported {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(supportedLanguages, ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}

	cfg.App.FloodLimitPerMinute = viper.GetInt("flood-limit-per-minute")
	if cfg.App.FloodLimitPerMinute <= 0 {
		cfg.App.FloodLimitPerMinute = core.DefaultFloodLimitPerMinute
	}
}

func parseUserIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runTunegram(cmd *cobra.Command, _ []string) error {
	// Handle generate-env-example flag
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting Tunegram",
		zap.String("version", "1.0.0"),
		zap.Bool("catalog_token_set", config.Catalog.Token != ""),
		zap.Int("allowed_users", len(config.Access.AllowedUsers)),
		zap.String("language", config.App.Language))

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	services, err := initializeServices()
	if err != nil {
		return err
	}

	return runServices(ctx, services)
}

type services struct {
	frontend   chat.Frontend
	httpServer *httpserver.Server
	dispatcher *core.Dispatcher
}

func initializeServices() (*services, error) {
	telegramConfig := &telegram.Config{
		BotToken:        config.Telegram.BotToken,
		TransferTimeout: core.DefaultTransferTimeout,
	}
	frontend := telegram.NewFrontend(telegramConfig, logger.Named("telegram"))

	fullClient := catalog.NewClient(&config.Catalog, config.Catalog.Token, logger.Named("catalog"))
	demoClient := catalog.NewClient(&config.Catalog, "", logger.Named("catalog-demo"))

	httpServer := httpserver.NewServer(&config.Server, logger.Named("http"))
	notifier := core.NewNotifier(frontend, config.Access.OperatorID, logger.Named("notifier"))
	dispatcher := core.NewDispatcher(config, frontend, fullClient, demoClient, notifier,
		httpServer, logger.Named("dispatcher"))

	return &services{
		frontend:   frontend,
		httpServer: httpServer,
		dispatcher: dispatcher,
	}, nil
}

func runServices(ctx context.Context, svcs *services) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return svcs.dispatcher.Start(gCtx)
	})

	logger.Info("Tunegram started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("Tunegram stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Tunegram stopped gracefully")
	return nil
}

func validateConfig() error {
	if config.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required")
	}

	if config.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL is required")
	}

	if config.Catalog.Token == "" {
		logger.Warn("No catalog token configured, all users are served at demo tier")
	}

	if info, err := os.Stat(config.App.DownloadDir); err != nil || !info.IsDir() {
		return fmt.Errorf("download directory %q is not usable", config.App.DownloadDir)
	}

	return nil
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# Tunegram Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	content.WriteString("# Format: TUNEGRAM_<SETTING>=value\n")
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("#\n\n")

	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# Telegram Configuration (Required)\n")
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(&content, "%s=123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11  # Bot token from @BotFather\n\n",
		flagToEnvVar("telegram-bot-token"))

	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# Music Catalog Configuration\n")
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(&content, "%s=your_catalog_api_token_here   # Full-tier API token (empty serves demo tier only)\n",
		flagToEnvVar("catalog-token"))
	fmt.Fprintf(&content, "%s=%s  # Catalog API base URL\n",
		flagToEnvVar("catalog-base-url"), core.DefaultConfig().Catalog.BaseURL)
	fmt.Fprintf(&content, "%s=%s           # Host fragment marking inbound track links\n\n",
		flagToEnvVar("catalog-link-host"), core.DefaultConfig().Catalog.LinkHost)

	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# Access Control\n")
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(&content, "%s=11111111,22222222   # Full-tier user IDs, comma-separated (empty allows everyone)\n",
		flagToEnvVar("allowed-users"))
	fmt.Fprintf(&content, "%s=11111111            # Operator user ID for startup and new-user notices (0 disables)\n\n",
		flagToEnvVar("operator-id"))

	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# Application Settings\n")
	content.WriteString("# -----------------------------------------------------------------------------\n")
	for _, flag := range []string{
		"search-limit", "delivery-max-attempts", "delivery-retry-delay-secs",
		"download-dir", "language", "flood-limit-per-minute",
	} {
		fmt.Fprintf(&content, "%s=%s\n", flagToEnvVar(flag), getDefaultValueString(cmd, flag))
	}
	content.WriteString("\n")

	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# HTTP Server and Logging\n")
	content.WriteString("# -----------------------------------------------------------------------------\n")
	for _, flag := range []string{"server-host", "server-port", "log-level"} {
		fmt.Fprintf(&content, "%s=%s\n", flagToEnvVar(flag), getDefaultValueString(cmd, flag))
	}

	return content.String()
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func getDefaultValueString(cmd *cobra.Command, flagName string) string {
	if f := cmd.PersistentFlags().Lookup(flagName); f != nil {
		return f.DefValue
	}
	return ""
}
