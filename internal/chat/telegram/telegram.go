// Package telegram provides Telegram Bot API integration using go-telegram/bot library.
package telegram

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"tunegram/internal/chat"
)

const (
	// pollTimeout is the long-poll timeout for getUpdates; it must stay
	// below the transport's response header timeout
	pollTimeout = 25 * time.Second
)

// Config holds Telegram-specific configuration
type Config struct {
	BotToken string
	// TransferTimeout covers connect/read/write for large audio uploads
	TransferTimeout time.Duration
}

// Frontend implements the chat.Frontend interface for Telegram
type Frontend struct {
	config *Config
	logger *zap.Logger
	bot    *bot.Bot

	eventHandler func(ctx context.Context, event *chat.Event)
}

// NewFrontend creates a new Telegram frontend
func NewFrontend(config *Config, logger *zap.Logger) *Frontend {
	return &Frontend{
		config: config,
		logger: logger,
	}
}

// Start initializes the Telegram bot and verifies the token
func (f *Frontend) Start(ctx context.Context) error {
	f.logger.Info("Starting Telegram frontend")

	transferTimeout := f.config.TransferTimeout
	if transferTimeout <= 0 {
		transferTimeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: transferTimeout,
			}).DialContext,
			TLSHandshakeTimeout:   transferTimeout,
			ResponseHeaderTimeout: transferTimeout,
			IdleConnTimeout:       transferTimeout,
		},
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(f.handleUpdate),
		bot.WithHTTPClient(pollTimeout, httpClient),
	}

	b, err := bot.New(f.config.BotToken, opts...)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	f.bot = b

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify bot token: %w", err)
	}

	f.logger.Info("Telegram frontend started successfully",
		zap.String("botUsername", me.Username))
	return nil
}

// Listen starts polling for updates and calls the handler for each event
func (f *Frontend) Listen(ctx context.Context, handler func(ctx context.Context, event *chat.Event)) error {
	f.eventHandler = handler

	// Blocks until ctx is done
	f.bot.Start(ctx)

	return nil
}

// SendText sends a text message to the specified chat
func (f *Frontend) SendText(ctx context.Context, chatID, text string) (string, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid chat ID: %w", err)
	}

	params := &bot.SendMessageParams{
		ChatID: chatIDInt,
		Text:   text,
	}

	// The bot never benefits from link previews
	disabled := true
	params.LinkPreviewOptions = &models.LinkPreviewOptions{
		IsDisabled: &disabled,
	}

	msg, err := f.bot.SendMessage(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return strconv.Itoa(msg.ID), nil
}

// SendChoices sends a text message with one inline button per choice
func (f *Frontend) SendChoices(ctx context.Context, chatID, text string, choices []chat.Choice) error {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	keyboard := make([][]models.InlineKeyboardButton, 0, len(choices))
	for _, choice := range choices {
		keyboard = append(keyboard, []models.InlineKeyboardButton{
			{
				Text:         choice.Label,
				CallbackData: choice.Data,
			},
		})
	}

	params := &bot.SendMessageParams{
		ChatID:      chatIDInt,
		Text:        text,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: keyboard},
	}

	if _, err := f.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send choices: %w", err)
	}
	return nil
}

// SendAudio uploads an audio file with its display metadata
func (f *Frontend) SendAudio(ctx context.Context, chatID string, audio *chat.Audio) error {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	file, err := os.Open(audio.Path)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	params := &bot.SendAudioParams{
		ChatID: chatIDInt,
		Audio: &models.InputFileUpload{
			Filename: filepath.Base(audio.Path),
			Data:     file,
		},
		Title:     audio.Title,
		Performer: audio.Performer,
		Caption:   audio.Caption,
	}

	if _, err := f.bot.SendAudio(ctx, params); err != nil {
		return fmt.Errorf("failed to send audio: %w", err)
	}
	return nil
}

// handleUpdate processes incoming Telegram updates
func (f *Frontend) handleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message != nil {
		f.handleMessage(ctx, update.Message)
	}
	if update.CallbackQuery != nil {
		f.handleCallbackQuery(ctx, b, update.CallbackQuery)
	}
}

// handleMessage converts inbound messages to unified events
func (f *Frontend) handleMessage(ctx context.Context, msg *models.Message) {
	if msg.From == nil || msg.From.IsBot || msg.Text == "" {
		return
	}
	if f.eventHandler == nil {
		return
	}

	event := &chat.Event{
		Kind:           chat.EventText,
		ChatID:         strconv.FormatInt(msg.Chat.ID, 10),
		SenderID:       msg.From.ID,
		SenderName:     userDisplayName(msg.From),
		SenderUsername: msg.From.Username,
		Text:           msg.Text,
		Raw:            msg,
	}

	if command, ok := parseCommand(msg.Text); ok {
		event.Kind = chat.EventCommand
		event.Command = command
	}

	f.eventHandler(ctx, event)
}

// handleCallbackQuery acknowledges the button press and forwards it
func (f *Frontend) handleCallbackQuery(ctx context.Context, b *bot.Bot, query *models.CallbackQuery) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
	}); err != nil {
		f.logger.Debug("Failed to answer callback query", zap.Error(err))
	}

	if f.eventHandler == nil || query.Message.Message == nil {
		return
	}

	event := &chat.Event{
		Kind:           chat.EventCallback,
		ChatID:         strconv.FormatInt(query.Message.Message.Chat.ID, 10),
		SenderID:       query.From.ID,
		SenderName:     userDisplayName(&query.From),
		SenderUsername: query.From.Username,
		Data:           query.Data,
		Raw:            query,
	}

	f.eventHandler(ctx, event)
}

// parseCommand extracts the command name from a "/command@bot args" message.
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}

	command := strings.Fields(text)[0]
	command = strings.TrimPrefix(command, "/")
	if at := strings.Index(command, "@"); at != -1 {
		command = command[:at]
	}
	if command == "" {
		return "", false
	}
	return command, true
}

// userDisplayName creates a display name for the user
func userDisplayName(user *models.User) string {
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	if name == "" && user.Username != "" {
		name = "@" + user.Username
	}
	return name
}
