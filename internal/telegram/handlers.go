package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"glow-routine/internal/catalog"
	"glow-routine/internal/chat"
	"glow-routine/internal/storage"
)

const (
	thinkingText   = "💬 Thinking…"
	generatingText = "✨ Generating Routine…"
	chatErrorText  = "Error occurred! Please try again later"
	loadErrorText  = "⚠️ Could not load the product catalog. Please try again later."
	advisoryText   = "Select at least one item to generate a routine"
	busyText       = "One moment — still working on your previous request."
)

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, msg.Chat.ID)
		case "reset":
			b.sessions.Reset(msg.Chat.ID)
			b.sendText(msg.Chat.ID, "Conversation cleared. Your selection is untouched.")
		case "stats":
			b.handleStats(msg.Chat.ID)
		default:
			b.sendText(msg.Chat.ID, "Try /start to browse the catalog, or just ask me anything about the products.")
		}
		return
	}
	b.handleChat(ctx, msg.Chat.ID, msg.Text)
}

// handleStart rehydrates the chat: stored category and selection come back
// from the state file, and if a category was active its cards re-render
// with activation marks applied from the restored selection.
func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	st := b.store.Restore(chatID)

	products, err := b.loader.Load(ctx)
	if err != nil {
		log.Printf("catalog load failed on start: %v", err)
		b.sendText(chatID, loadErrorText)
		return
	}

	msg := tgbotapi.NewMessage(chatID, "👋 Welcome! Pick a category to view products:")
	msg.ReplyMarkup = categoriesMarkup(catalog.Categories(products))
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send category menu: %v", err)
	}

	if st.Category != "" {
		b.renderCards(chatID, st.Category, catalog.FilterByCategory(products, st.Category))
	}
	// Restored chips show even without a stored category; orphaned
	// selections stay visible and dismissable.
	if st.Category != "" || len(st.Items) > 0 {
		b.syncPanel(chatID, true)
	}
}

// handleCallback routes taps on the inline keyboards.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	defer func() {
		if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			log.Printf("failed to ack callback: %v", err)
		}
	}()

	switch {
	case strings.HasPrefix(cb.Data, categoryPrefix):
		b.handleCategoryChange(ctx, chatID, strings.TrimPrefix(cb.Data, categoryPrefix))
	case strings.HasPrefix(cb.Data, productPrefix):
		b.handleToggle(chatID, strings.TrimPrefix(cb.Data, productPrefix))
	case strings.HasPrefix(cb.Data, removePrefix):
		b.handleToggle(chatID, strings.TrimPrefix(cb.Data, removePrefix))
	case cb.Data == routineCmd:
		b.handleRoutine(ctx, chatID)
	case cb.Data == resetCmd:
		b.sessions.Reset(chatID)
		b.sendText(chatID, "Conversation cleared.")
	}
}

// handleCategoryChange loads the catalog first: a load failure renders an
// inline error and leaves both category and selection untouched.
func (b *Bot) handleCategoryChange(ctx context.Context, chatID int64, category string) {
	products, err := b.loader.Load(ctx)
	if err != nil {
		log.Printf("catalog load failed: %v", err)
		b.sendText(chatID, loadErrorText)
		return
	}

	if err := b.store.Clear(chatID); err != nil {
		log.Printf("failed to persist cleared selection: %v", err)
	}
	if err := b.store.SetCategory(chatID, category); err != nil {
		log.Printf("failed to persist category: %v", err)
	}

	filtered := catalog.FilterByCategory(products, category)
	if len(filtered) == 0 {
		b.sendText(chatID, "No products in this category yet.")
	}
	b.renderCards(chatID, category, filtered)
	b.syncPanel(chatID, true)
}

// handleToggle flips one product, then re-syncs activation marks and the
// selection panel. Card taps and chip dismissals land here alike.
func (b *Bot) handleToggle(chatID int64, cardID string) {
	v := b.view(chatID)
	b.mu.Lock()
	name, ok := v.cardNames[cardID]
	b.mu.Unlock()
	if !ok {
		// Stale button from a previous render; nothing to toggle.
		return
	}

	b.clearAdvisory(chatID)
	if _, err := b.store.Toggle(chatID, name); err != nil {
		log.Printf("failed to persist selection: %v", err)
	}
	b.refreshCardMarks(chatID)
	b.syncPanel(chatID, false)
}

func (b *Bot) handleChat(ctx context.Context, chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		// The session would reject it anyway; skip the status bubble too.
		return
	}
	session := b.sessions.Session(chatID)

	statusID := b.sendStatus(chatID, thinkingText)
	reply, err := session.SubmitChat(ctx, text)
	b.clearStatus(chatID, statusID)

	if err != nil {
		b.handleChatError(chatID, session.ID, "chat", text, err)
		return
	}

	b.record(storage.Event{ChatID: chatID, SessionID: session.ID, Kind: "chat", UserMessage: text, AssistantResponse: reply})
	b.sendReply(chatID, reply)
}

func (b *Bot) handleRoutine(ctx context.Context, chatID int64) {
	names := b.store.Names(chatID)
	session := b.sessions.Session(chatID)

	if len(names) == 0 {
		b.showAdvisory(chatID)
		return
	}

	statusID := b.sendStatus(chatID, generatingText)
	reply, err := session.GenerateRoutine(ctx, names)
	b.clearStatus(chatID, statusID)

	if err != nil {
		b.handleChatError(chatID, session.ID, "routine", strings.Join(names, ", "), err)
		return
	}

	b.record(storage.Event{ChatID: chatID, SessionID: session.ID, Kind: "routine", UserMessage: strings.Join(names, ", "), AssistantResponse: reply})
	b.sendReply(chatID, reply)
}

func (b *Bot) handleChatError(chatID int64, sessionID, kind, userMessage string, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyPrompt):
		// Blank input: no turn, no call, nothing to show.
	case errors.Is(err, chat.ErrBusy):
		b.sendText(chatID, busyText)
	case errors.Is(err, chat.ErrEmptySelection):
		b.showAdvisory(chatID)
	default:
		log.Printf("completion request failed [session=%s]: %v", sessionID, err)
		b.record(storage.Event{ChatID: chatID, SessionID: sessionID, Kind: kind, UserMessage: userMessage, Error: err.Error()})
		b.sendText(chatID, chatErrorText)
	}
}

// handleStats summarizes the chat's recorded interactions from the log.
func (b *Bot) handleStats(chatID int64) {
	if b.recorder == nil {
		b.sendText(chatID, "No interaction log configured.")
		return
	}
	events, err := b.recorder.LoadInteractions()
	if err != nil {
		log.Printf("failed to load interactions: %v", err)
		b.sendText(chatID, "Could not read the interaction log.")
		return
	}
	var chats, routines, failures int
	for _, ev := range events {
		if ev.ChatID != chatID {
			continue
		}
		switch ev.Kind {
		case "chat":
			chats++
		case "routine":
			routines++
		}
		if ev.Error != "" {
			failures++
		}
	}
	b.sendText(chatID, fmt.Sprintf("📊 Your activity: %d chat messages, %d routines, %d failed requests.", chats, routines, failures))
}

// showAdvisory posts the empty-selection notice once and auto-dismisses it
// after the configured TTL. While one is visible, repeat attempts do not
// stack a second notice; after dismissal it can reappear.
func (b *Bot) showAdvisory(chatID int64) {
	v := b.view(chatID)
	b.mu.Lock()
	if v.advisoryMsgID != 0 {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	sent, err := b.s.Send(tgbotapi.NewMessage(chatID, advisoryText))
	if err != nil {
		log.Printf("failed to send advisory: %v", err)
		return
	}
	b.mu.Lock()
	v.advisoryMsgID = sent.MessageID
	b.mu.Unlock()

	time.AfterFunc(b.advisoryTTL, func() {
		b.clearAdvisory(chatID)
	})
}

func (b *Bot) clearAdvisory(chatID int64) {
	v := b.view(chatID)
	b.mu.Lock()
	msgID := v.advisoryMsgID
	v.advisoryMsgID = 0
	b.mu.Unlock()
	if msgID != 0 {
		b.deleteMessage(chatID, msgID)
	}
}

// sendStatus posts a transient "working" bubble; clearStatus removes it
// once the terminal reply is ready. Removal of an already-deleted status
// is a no-op.
func (b *Bot) sendStatus(chatID int64, text string) int {
	sent, err := b.s.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		log.Printf("failed to send status: %v", err)
		return 0
	}
	v := b.view(chatID)
	b.mu.Lock()
	v.statusMsgID = sent.MessageID
	b.mu.Unlock()
	return sent.MessageID
}

func (b *Bot) clearStatus(chatID int64, statusID int) {
	v := b.view(chatID)
	b.mu.Lock()
	if v.statusMsgID == statusID {
		v.statusMsgID = 0
	}
	b.mu.Unlock()
	b.deleteMessage(chatID, statusID)
}

// sendReply formats an assistant reply for display and sends it.
func (b *Bot) sendReply(chatID int64, reply string) {
	msg := tgbotapi.NewMessage(chatID, markdownToHTML(reply))
	msg.ParseMode = b.parseModeValue()
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 New conversation", resetCmd),
		),
	)
	msg.ReplyMarkup = kb
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send reply: %v", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.s.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) record(ev storage.Event) {
	if b.recorder == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	if err := b.recorder.AppendInteraction(ev); err != nil {
		log.Printf("failed to record interaction: %v", err)
	}
}
