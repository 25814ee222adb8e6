package bot

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/ctxutil"
	"github.com/Spok95/college-portal/internal/logging"
	"github.com/Spok95/college-portal/internal/metrics"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/observability"
	"github.com/Spok95/college-portal/internal/portal"
	"github.com/Spok95/college-portal/internal/report"
	"github.com/Spok95/college-portal/internal/stats"
	"github.com/Spok95/college-portal/internal/tg"
)

// Portal: операции сервиса, доступные из бота.
type Portal interface {
	Dashboard(ctx context.Context, sess models.Session) (*stats.Dashboard, error)
	Teaching(ctx context.Context, sess models.Session) (*stats.TeachingLoad, error)
	Export(ctx context.Context, sess models.Session, typ report.Type, format portal.Format) (*portal.Export, error)
	Circulars(ctx context.Context, sess models.Session, limit int) ([]models.Circular, error)
	MyAttendance(ctx context.Context, sess models.Session) (*portal.MyAttendance, error)
	MyResults(ctx context.Context, sess models.Session) (*portal.MyResults, error)
	MyFees(ctx context.Context, sess models.Session) (*portal.MyFees, error)
}

type Profiles interface {
	GetProfileByTelegramID(ctx context.Context, telegramID int64) (*models.Profile, error)
}

type Options struct {
	IsAdminChat   func(chatID int64) bool
	Currency      string
	CircularLimit int
}

type Bot struct {
	api      tg.Sender
	svc      Portal
	profiles Profiles
	opts     Options
	limiter  *ChatLimiter
	log      *zap.Logger
}

func New(api tg.Sender, svc Portal, profiles Profiles, opts Options, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.IsAdminChat == nil {
		opts.IsAdminChat = func(int64) bool { return false }
	}
	if opts.Currency == "" {
		opts.Currency = "₹"
	}
	if opts.CircularLimit <= 0 {
		opts.CircularLimit = 5
	}
	return &Bot{
		api:      api,
		svc:      svc,
		profiles: profiles,
		opts:     opts,
		limiter:  NewChatLimiter(),
		log:      log.Named("bot"),
	}
}

// Run читает обновления до отмены контекста или закрытия канала.
// Возвращается после завершения уже начатых обработчиков.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			metrics.BotUpdates.Inc()
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.Handle(ctx, upd)
			}()
		}
	}
}

func (b *Bot) Handle(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		b.handleMessage(ctx, upd.Message)
	}
}

// session: профиль по Telegram ID; чаты из ADMIN_IDS без профиля получают роль admin.
func (b *Bot) session(ctx context.Context, chatID int64) (models.Session, bool) {
	p, err := b.profiles.GetProfileByTelegramID(ctx, chatID)
	if err != nil {
		logging.FromContext(ctx, b.log).Warn("profile lookup failed", zap.Error(err))
	}
	if p != nil && p.Role.Valid() {
		return models.Session{ProfileID: p.ID, Role: p.Role}, true
	}
	if b.opts.IsAdminChat(chatID) {
		return models.Session{Role: models.RoleAdmin}, true
	}
	return models.Session{}, false
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	unlock := b.limiter.lock(chatID)
	defer unlock()

	ctx = ctxutil.WithChatID(ctx, chatID)
	sess, ok := b.session(ctx, chatID)
	if !ok {
		b.reply(chatID, "⚠️ This chat is not linked to a portal account. Ask the administrator to register your Telegram ID.")
		return
	}

	cmd, args := parseCommand(msg.Text)
	ctx = ctxutil.WithOp(ctx, "bot."+cmd)
	switch cmd {
	case "start", "help":
		b.handleStart(chatID, sess)
	case "stats":
		b.handleStats(ctx, chatID, sess)
	case "report":
		b.handleReport(ctx, chatID, sess, args)
	case "circulars":
		b.handleCirculars(ctx, chatID, sess)
	case "attendance":
		b.handleAttendance(ctx, chatID, sess)
	case "results":
		b.handleResults(ctx, chatID, sess)
	case "fees":
		b.handleFees(ctx, chatID, sess)
	default:
		b.reply(chatID, "⚠️ Unknown command. Use /start")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	_, _ = tg.Request(b.api, tgbotapi.NewCallback(cb.ID, ""))

	name, ok := strings.CutPrefix(cb.Data, reportCallbackPrefix)
	if !ok {
		b.reply(chatID, "⚠️ Unknown command. Use /start")
		return
	}
	unlock := b.limiter.lock(chatID)
	defer unlock()

	ctx = ctxutil.WithOp(ctxutil.WithChatID(ctx, chatID), "bot.report")
	sess, ok := b.session(ctx, chatID)
	if !ok {
		b.reply(chatID, "🚫 Access denied.")
		return
	}
	b.handleReport(ctx, chatID, sess, []string{name})
}

// parseCommand: "/report@portal_bot fees" -> ("report", ["fees"]). Кнопки меню тоже команды.
func parseCommand(text string) (string, []string) {
	text = strings.TrimSpace(text)
	if cmd, ok := menuCommands[text]; ok {
		return cmd, nil
	}
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), fields[1:]
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := tg.Send(b.api, tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// fail: ответ пользователю по классу ошибки; сбои хранилища логируются и уходят в Sentry.
func (b *Bot) fail(ctx context.Context, chatID int64, err error) {
	k, _ := apperr.KindOf(err)
	switch k {
	case apperr.KindForbidden:
		b.reply(chatID, "🚫 Access denied.")
	case apperr.KindValidation:
		text := err.Error()
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Msg != "" {
			text = ae.Msg
		}
		b.reply(chatID, "⚠️ "+text)
	case apperr.KindNotFound:
		b.reply(chatID, "Nothing found for your account.")
	default:
		metrics.HandlerErrors.Inc()
		observability.CaptureRemote(err)
		logging.FromContext(ctx, b.log).Error("command failed", zap.Error(err))
		b.reply(chatID, "❌ Something went wrong, try again later.")
	}
}
