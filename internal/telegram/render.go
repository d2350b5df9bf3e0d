package telegram

import (
	"fmt"
	"html"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"glow-routine/internal/catalog"
)

const (
	placeholderText = "Select a category to view products"
	panelEmptyText  = "🧺 No products selected yet. Tap a card to add it."
)

func categoriesMarkup(categories []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(title(c), categoryPrefix+c),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// cardsMarkup lays out one product card per row. The activation mark is
// derived from the selection store at render time, never from the filter
// pass that produced the product list.
func (b *Bot) cardsMarkup(chatID int64, products []catalog.Product) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range products {
		label := fmt.Sprintf("%s — %s", p.Name, p.Brand)
		if b.store.IsSelected(chatID, p.Name) {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, productPrefix+catalog.CardID(p.Name)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✨ Generate routine", routineCmd),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// renderCards replaces the chat's product card message with the given
// products and records the card-ID join table for later taps.
func (b *Bot) renderCards(chatID int64, category string, products []catalog.Product) {
	v := b.view(chatID)

	b.mu.Lock()
	v.products = products
	v.cardNames = make(map[string]string)
	for _, p := range products {
		v.cardNames[catalog.CardID(p.Name)] = p.Name
	}
	cardsMsgID := v.cardsMsgID
	b.mu.Unlock()

	text := fmt.Sprintf("🗂 <b>%s</b> — %d products. Tap to select.", html.EscapeString(title(category)), len(products))
	markup := b.cardsMarkup(chatID, products)

	if cardsMsgID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, cardsMsgID, text)
		edit.ParseMode = b.parseModeValue()
		edit.ReplyMarkup = &markup
		if _, err := b.s.Send(edit); err == nil {
			return
		}
		// Editing can fail if the message was deleted; fall through and
		// send a fresh one.
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.parseModeValue()
	msg.ReplyMarkup = markup
	sent, err := b.s.Send(msg)
	if err != nil {
		log.Printf("failed to render cards: %v", err)
		return
	}
	b.mu.Lock()
	v.cardsMsgID = sent.MessageID
	b.mu.Unlock()
}

// refreshCardMarks re-applies activation marks on the rendered cards after
// a selection change, without re-fetching or re-filtering.
func (b *Bot) refreshCardMarks(chatID int64) {
	v := b.view(chatID)
	b.mu.Lock()
	msgID := v.cardsMsgID
	products := v.products
	b.mu.Unlock()
	if msgID == 0 || len(products) == 0 {
		return
	}
	markup := b.cardsMarkup(chatID, products)
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, msgID, markup)
	if _, err := b.s.Send(edit); err != nil {
		log.Printf("failed to refresh card marks: %v", err)
	}
}

func panelText(names []string) string {
	if len(names) == 0 {
		return panelEmptyText
	}
	var sb strings.Builder
	sb.WriteString("🧺 <b>Selected products</b>\n")
	for _, n := range names {
		sb.WriteString("• ")
		sb.WriteString(html.EscapeString(n))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func panelMarkup(names []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, n := range names {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✕ "+n, removePrefix+catalog.CardID(n)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✨ Generate routine", routineCmd),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// syncPanel brings the selection panel message in line with the store.
// rebuild drops the old panel and sends a fresh one (category change);
// otherwise the existing message is edited in place (single toggle).
func (b *Bot) syncPanel(chatID int64, rebuild bool) {
	v := b.view(chatID)
	names := b.store.Names(chatID)

	b.mu.Lock()
	panelMsgID := v.panelMsgID
	b.mu.Unlock()

	if rebuild && panelMsgID != 0 {
		b.deleteMessage(chatID, panelMsgID)
		panelMsgID = 0
		b.mu.Lock()
		v.panelMsgID = 0
		b.mu.Unlock()
	}

	text := panelText(names)
	markup := panelMarkup(names)

	if panelMsgID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, panelMsgID, text)
		edit.ParseMode = b.parseModeValue()
		edit.ReplyMarkup = &markup
		if _, err := b.s.Send(edit); err == nil {
			return
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.parseModeValue()
	msg.ReplyMarkup = markup
	sent, err := b.s.Send(msg)
	if err != nil {
		log.Printf("failed to render selection panel: %v", err)
		return
	}
	b.mu.Lock()
	v.panelMsgID = sent.MessageID
	b.mu.Unlock()
}

// deleteMessage removes a message the bot owns. A message that is already
// gone is fine; Telegram answers with an error we deliberately swallow.
func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := b.s.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		log.Printf("delete message %d in chat %d: %v", messageID, chatID, err)
	}
}
