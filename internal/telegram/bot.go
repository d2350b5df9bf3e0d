// Package telegram renders the catalog, selection panel and chat flows
// onto the Telegram surface. All product/session state lives in the
// headless packages; this layer only draws it and routes taps back.
package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"glow-routine/internal/catalog"
	"glow-routine/internal/chat"
	"glow-routine/internal/selection"
	"glow-routine/internal/storage"
)

const (
	categoryPrefix = "cat:"
	productPrefix  = "prod:"
	removePrefix   = "rm:"
	routineCmd     = "routine"
	resetCmd       = "reset_ctx"
)

// chatView tracks the message IDs this bot owns in one chat, plus the
// card-ID → product-name join for the currently rendered category.
type chatView struct {
	cardsMsgID    int
	panelMsgID    int
	statusMsgID   int
	advisoryMsgID int
	cardNames     map[string]string
	products      []catalog.Product
}

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	loader      *catalog.Loader
	store       *selection.Store
	sessions    *chat.Manager
	recorder    storage.Recorder
	parseMode   string
	advisoryTTL time.Duration

	mu    sync.Mutex
	views map[int64]*chatView
}

func New(botToken string, loader *catalog.Loader, store *selection.Store, sessions *chat.Manager, recorder storage.Recorder, parseMode string, advisoryTTL time.Duration) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:         api,
		s:           botAPISender{api: api},
		loader:      loader,
		store:       store,
		sessions:    sessions,
		recorder:    recorder,
		parseMode:   parseMode,
		advisoryTTL: advisoryTTL,
		views:       make(map[int64]*chatView),
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			b.handleIncomingMessage(ctx, update.Message)
			continue
		}
		if update.CallbackQuery != nil {
			b.handleCallback(ctx, update.CallbackQuery)
			continue
		}
	}
}

func (b *Bot) view(chatID int64) *chatView {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.views[chatID]
	if !ok {
		v = &chatView{cardNames: make(map[string]string)}
		b.views[chatID] = v
	}
	return v
}

func (b *Bot) parseModeValue() string {
	if b.parseMode == "" {
		return tgbotapi.ModeHTML
	}
	return b.parseMode
}
