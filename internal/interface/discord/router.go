// Package discord implements the Discord bot interface: command routing,
// the two-phase registration conversation, and the single-worker bot loop
// that serializes every mutation.
package discord

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/solvecircle/dailyproof/internal/domain/member"
	api "github.com/solvecircle/dailyproof/internal/infrastructure/external/discord"
	"github.com/solvecircle/dailyproof/internal/interface/discord/handler"
	"github.com/solvecircle/dailyproof/internal/interface/discord/middleware"
	"github.com/solvecircle/dailyproof/internal/interface/discord/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// ReplyWindow is how long a registration name prompt stays open.
	ReplyWindow time.Duration
}

// DefaultReplyWindow matches the wording of the registration prompt.
const DefaultReplyWindow = 60 * time.Second

// Responder sends replies on behalf of the router. The production
// implementation is the REST client; tests substitute a recorder.
type Responder interface {
	Respond(ctx context.Context, channelID, replyToID, content string) error
}

// Handlers groups the command handlers the router dispatches to.
type Handlers struct {
	Register     *handler.RegisterHandler
	Submit       *handler.SubmitHandler
	Status       *handler.StatusHandler
	NotCompleted *handler.NotCompletedHandler
	Summarize    *handler.SummarizeHandler
}

// ══════════════════════════════════════════════════════════════════════════════
// PENDING CONVERSATIONS
// The registration flow waits for the member's next DM. Pending prompts
// are keyed by user and channel so a prompt in one DM cannot be answered
// from anywhere else, and expire after the reply window.
// ══════════════════════════════════════════════════════════════════════════════

type pendingKey struct {
	userID    string
	channelID string
}

type pendingReply struct {
	handle member.Handle
	timer  *time.Timer
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// ══════════════════════════════════════════════════════════════════════════════

// Router routes incoming messages to command handlers. Route is only ever
// called from the bot loop; the pending map still takes a mutex because
// expiry timers fire on their own goroutines.
type Router struct {
	config    RouterConfig
	logger    *slog.Logger
	responder Responder
	handlers  Handlers
	access    *middleware.AccessMiddleware
	recovery  *middleware.RecoveryMiddleware

	pendingMu sync.Mutex
	pending   map[pendingKey]*pendingReply
}

// NewRouter creates a new router.
func NewRouter(
	config RouterConfig,
	responder Responder,
	handlers Handlers,
	access *middleware.AccessMiddleware,
	recovery *middleware.RecoveryMiddleware,
) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.ReplyWindow <= 0 {
		config.ReplyWindow = DefaultReplyWindow
	}
	return &Router{
		config:    config,
		logger:    config.Logger.With("component", "router"),
		responder: responder,
		handlers:  handlers,
		access:    access,
		recovery:  recovery,
		pending:   make(map[pendingKey]*pendingReply),
	}
}

// Route processes one incoming message.
func (r *Router) Route(ctx context.Context, msg *api.Message) {
	if msg == nil || msg.Author == nil {
		return
	}

	content := strings.TrimSpace(msg.Content)

	// A pending name prompt swallows the member's next message in that
	// DM, whatever it says.
	if p := r.takePending(msg.Author.ID, msg.ChannelID); p != nil {
		r.completeRegistration(ctx, msg, p, content)
		return
	}

	if !strings.HasPrefix(content, "/") {
		return
	}

	name, args := splitCommand(content)
	r.dispatch(ctx, msg, name, args)
}

// splitCommand separates "/summarize January-2026" into name and args.
func splitCommand(content string) (string, []string) {
	fields := strings.Fields(content)
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	return name, fields[1:]
}

func (r *Router) dispatch(ctx context.Context, msg *api.Message, name string, args []string) {
	handle := member.Handle(msg.Author.Username)
	isDM := msg.IsDM()

	var roleIDs []string
	if msg.Member != nil {
		roleIDs = msg.Member.Roles
	}
	isAdmin := r.access.IsAdmin(msg.Author.ID, roleIDs)

	switch name {
	case "register":
		if !isDM {
			r.reply(ctx, msg, presenter.DMOnly())
			return
		}
		r.runGuarded(ctx, msg, name, func() error {
			res := r.handlers.Register.Begin(ctx, handle)
			if res.Await {
				r.armPending(ctx, msg, handle)
			}
			r.reply(ctx, msg, res.Text)
			return nil
		})

	case "submit":
		if !isDM {
			r.reply(ctx, msg, presenter.DMOnly())
			return
		}
		r.runGuarded(ctx, msg, name, func() error {
			var attachmentURL string
			if len(msg.Attachments) > 0 {
				attachmentURL = msg.Attachments[0].URL
			}
			text, err := r.handlers.Submit.Handle(ctx, handle, attachmentURL, strings.Join(args, " "))
			if err != nil {
				return err
			}
			r.reply(ctx, msg, text)
			return nil
		})

	case "status":
		if !isDM {
			r.reply(ctx, msg, presenter.DMOnly())
			return
		}
		r.runGuarded(ctx, msg, name, func() error {
			text, err := r.handlers.Status.Handle(ctx, handle)
			if err != nil {
				return err
			}
			r.reply(ctx, msg, text)
			return nil
		})

	case "notcompleted":
		if !isAdmin {
			r.reply(ctx, msg, presenter.AdminOnly())
			return
		}
		r.runGuarded(ctx, msg, name, func() error {
			text, err := r.handlers.NotCompleted.Handle(ctx)
			if err != nil {
				return err
			}
			r.reply(ctx, msg, text)
			return nil
		})

	case "summarize":
		if !isAdmin {
			r.reply(ctx, msg, presenter.AdminOnly())
			return
		}
		r.runGuarded(ctx, msg, name, func() error {
			text, err := r.handlers.Summarize.Handle(ctx, args)
			if err != nil {
				return err
			}
			r.reply(ctx, msg, text)
			return nil
		})

	case "help":
		r.reply(ctx, msg, presenter.Help())

	default:
		// Guild channels carry unrelated slash traffic; only DMs get the
		// unknown-command hint.
		if isDM {
			r.reply(ctx, msg, presenter.UnknownCommand())
		}
	}
}

// runGuarded executes fn under panic recovery and maps internal errors to
// the generic reply.
func (r *Router) runGuarded(ctx context.Context, msg *api.Message, command string, fn func() error) {
	res, err := r.recovery.Execute(ctx, msg.Author.ID, command, fn)
	if res != nil && res.Recovered {
		r.reply(ctx, msg, res.UserMessage)
		return
	}
	if err != nil {
		r.logger.Error("command failed",
			"command", command,
			"user_id", msg.Author.ID,
			"error", err)
		r.reply(ctx, msg, presenter.InternalError())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Registration conversation
// ─────────────────────────────────────────────────────────────────────────────

func (r *Router) completeRegistration(ctx context.Context, msg *api.Message, p *pendingReply, reply string) {
	r.runGuarded(ctx, msg, "register", func() error {
		text, err := r.handlers.Register.Complete(ctx, p.handle, reply)
		if err != nil {
			return err
		}
		r.reply(ctx, msg, text)
		return nil
	})
}

// armPending opens the reply window for a name prompt. The expiry timer
// replies with the timeout text; no registry state exists yet, so expiry
// needs no cleanup beyond dropping the entry.
func (r *Router) armPending(ctx context.Context, msg *api.Message, handle member.Handle) {
	key := pendingKey{userID: msg.Author.ID, channelID: msg.ChannelID}

	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()

	if old, ok := r.pending[key]; ok {
		old.timer.Stop()
	}

	p := &pendingReply{handle: handle}
	p.timer = time.AfterFunc(r.config.ReplyWindow, func() {
		r.expirePending(key)
	})
	r.pending[key] = p
}

// takePending removes and returns the pending prompt for the sender, if any.
func (r *Router) takePending(userID, channelID string) *pendingReply {
	key := pendingKey{userID: userID, channelID: channelID}

	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()

	p, ok := r.pending[key]
	if !ok {
		return nil
	}
	delete(r.pending, key)
	p.timer.Stop()
	return p
}

// expirePending fires on the timer goroutine when the reply window closes.
func (r *Router) expirePending(key pendingKey) {
	r.pendingMu.Lock()
	_, ok := r.pending[key]
	if ok {
		delete(r.pending, key)
	}
	r.pendingMu.Unlock()

	if !ok {
		// A reply won the race.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.responder.Respond(ctx, key.channelID, "", r.handlers.Register.Timeout()); err != nil {
		r.logger.Warn("failed to send registration timeout", "error", err)
	}
}

// PendingCount reports open registration prompts. Used by tests and the
// shutdown log.
func (r *Router) PendingCount() int {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	return len(r.pending)
}

func (r *Router) reply(ctx context.Context, msg *api.Message, text string) {
	if text == "" {
		return
	}
	if err := r.responder.Respond(ctx, msg.ChannelID, msg.ID, text); err != nil {
		r.logger.Error("failed to send reply",
			"channel_id", msg.ChannelID,
			"error", err)
	}
}
