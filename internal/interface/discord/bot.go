package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/solvecircle/dailyproof/internal/domain/member"
	api "github.com/solvecircle/dailyproof/internal/infrastructure/external/discord"
	"github.com/solvecircle/dailyproof/internal/interface/discord/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// One worker goroutine owns all command handling. Gateway events and
// scheduler jobs both funnel into the same queue, so ledger appends and
// counter updates never race regardless of how many things fire at once.
// ══════════════════════════════════════════════════════════════════════════════

// Messenger is the outbound surface the bot needs from the REST client.
type Messenger interface {
	SendMessage(ctx context.Context, channelID, content string) (*api.Message, error)
	Reply(ctx context.Context, channelID, messageID, content string) (*api.Message, error)
	SendDM(ctx context.Context, userID, content string) (*api.Message, error)
}

// BotConfig contains configuration for the bot loop.
type BotConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// AdminChannelID receives report announcements. Empty disables them.
	AdminChannelID string

	// QueueSize bounds the dispatch queue.
	QueueSize int
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig() BotConfig {
	return BotConfig{QueueSize: 128}
}

type task struct {
	fn   func(ctx context.Context)
	done chan struct{}
}

// Bot runs the dispatch loop. It implements the scheduler job interfaces
// (Dispatcher, ReminderNotifier, Announcer) so jobs execute on the loop
// and send through the same client as command replies.
type Bot struct {
	config    BotConfig
	logger    *slog.Logger
	messenger Messenger
	events    <-chan *api.Message
	router    *Router

	tasks chan task

	// userIDs maps platform usernames to user IDs, learned from message
	// authors. Reminders need the ID to open a DM; a member who has never
	// messaged since startup cannot be reminded yet.
	userMu  sync.RWMutex
	userIDs map[member.Handle]string
}

// NewBot creates the bot loop around the REST client and gateway events.
// The router is attached separately because it replies through the bot.
func NewBot(config BotConfig, messenger Messenger, events <-chan *api.Message) *Bot {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 128
	}
	return &Bot{
		config:    config,
		logger:    config.Logger.With("component", "bot"),
		messenger: messenger,
		events:    events,
		tasks:     make(chan task, config.QueueSize),
		userIDs:   make(map[member.Handle]string),
	}
}

// AttachRouter wires the router. Must be called before Run.
func (b *Bot) AttachRouter(router *Router) {
	b.router = router
}

// Run processes events and dispatched tasks until ctx is cancelled or the
// gateway event channel closes. It is the single worker; nothing else
// touches the application layer.
func (b *Bot) Run(ctx context.Context) error {
	if b.router == nil {
		return errors.New("bot: no router attached")
	}

	b.logger.Info("bot loop started")
	for {
		select {
		case <-ctx.Done():
			b.drainTasks(ctx)
			b.logger.Info("bot loop stopped", "pending_prompts", b.router.PendingCount())
			return ctx.Err()

		case t := <-b.tasks:
			t.fn(ctx)
			close(t.done)

		case msg, ok := <-b.events:
			if !ok {
				b.logger.Info("gateway event channel closed")
				return nil
			}
			b.learnUserID(msg)
			b.router.Route(ctx, msg)
		}
	}
}

// drainTasks unblocks dispatchers waiting on the queue at shutdown.
func (b *Bot) drainTasks(ctx context.Context) {
	for {
		select {
		case t := <-b.tasks:
			t.fn(ctx)
			close(t.done)
		default:
			return
		}
	}
}

// learnUserID records the author's username to ID mapping.
func (b *Bot) learnUserID(msg *api.Message) {
	if msg == nil || msg.Author == nil || msg.Author.Username == "" {
		return
	}
	handle := member.Handle(msg.Author.Username)

	b.userMu.Lock()
	b.userIDs[handle] = msg.Author.ID
	b.userMu.Unlock()
}

// lookupUserID resolves a handle to a platform user ID, if known.
func (b *Bot) lookupUserID(handle member.Handle) (string, bool) {
	b.userMu.RLock()
	defer b.userMu.RUnlock()
	id, ok := b.userIDs[handle]
	return id, ok
}

// ─────────────────────────────────────────────────────────────────────────────
// Responder
// ─────────────────────────────────────────────────────────────────────────────

// Respond implements Responder for the router.
func (b *Bot) Respond(ctx context.Context, channelID, replyToID, content string) error {
	var err error
	if replyToID != "" {
		_, err = b.messenger.Reply(ctx, channelID, replyToID, content)
	} else {
		_, err = b.messenger.SendMessage(ctx, channelID, content)
	}
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Scheduler integration
// ─────────────────────────────────────────────────────────────────────────────

// Dispatch implements jobs.Dispatcher: the task runs on the bot loop and
// Dispatch returns once it has completed.
func (b *Bot) Dispatch(ctx context.Context, fn func(ctx context.Context)) error {
	t := task{fn: fn, done: make(chan struct{})}

	select {
	case b.tasks <- t:
	case <-ctx.Done():
		return fmt.Errorf("dispatch: %w", ctx.Err())
	}

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatch: %w", ctx.Err())
	}
}

// RemindMember implements jobs.ReminderNotifier by DMing the member.
func (b *Bot) RemindMember(ctx context.Context, m *member.Member) error {
	userID, ok := b.lookupUserID(m.Handle)
	if !ok {
		return fmt.Errorf("no known user id for %s", m.Handle)
	}
	if _, err := b.messenger.SendDM(ctx, userID, presenter.ReminderText(m.DisplayName)); err != nil {
		return fmt.Errorf("remind %s: %w", m.Handle, err)
	}
	return nil
}

// Announce implements jobs.Announcer. A missing admin channel makes it a
// no-op rather than an error.
func (b *Bot) Announce(ctx context.Context, message string) error {
	if b.config.AdminChannelID == "" {
		return nil
	}
	_, err := b.messenger.SendMessage(ctx, b.config.AdminChannelID, message)
	return err
}
