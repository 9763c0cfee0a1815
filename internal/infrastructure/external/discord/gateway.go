package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/net/websocket"
)

// ══════════════════════════════════════════════════════════════════════════════
// GATEWAY
// Persistent websocket session: hello, identify, heartbeat, dispatch.
// Only MESSAGE_CREATE is surfaced; everything else the bot does not need.
// ══════════════════════════════════════════════════════════════════════════════

// GatewayConfig contains configuration for the gateway session.
type GatewayConfig struct {
	// Token is the bot token used in the identify frame.
	Token string

	// Intents is the gateway intents bitmask. Zero means the default
	// message-command set.
	Intents int

	// ReconnectDelay is the pause before re-dialing a dropped session.
	ReconnectDelay time.Duration

	// EventBuffer is the capacity of the outgoing event channel.
	EventBuffer int

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultGatewayConfig returns sensible defaults.
func DefaultGatewayConfig(token string) GatewayConfig {
	return GatewayConfig{
		Token:          token,
		Intents:        defaultGatewayIntents,
		ReconnectDelay: 5 * time.Second,
		EventBuffer:    64,
	}
}

// Gateway maintains the websocket session and emits incoming messages.
type Gateway struct {
	client *Client
	config GatewayConfig
	logger *slog.Logger

	events  chan *Message
	lastSeq atomic.Int64

	// botUserID is learned from READY and used to drop our own echoes.
	botUserID atomic.Value
}

// NewGateway creates a gateway over the REST client (used to discover
// the websocket URL).
func NewGateway(client *Client, config GatewayConfig) *Gateway {
	if config.Intents == 0 {
		config.Intents = defaultGatewayIntents
	}
	if config.ReconnectDelay == 0 {
		config.ReconnectDelay = 5 * time.Second
	}
	if config.EventBuffer == 0 {
		config.EventBuffer = 64
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Gateway{
		client: client,
		config: config,
		logger: config.Logger.With("component", "gateway"),
		events: make(chan *Message, config.EventBuffer),
	}
}

// Events returns the channel of incoming MESSAGE_CREATE messages. The
// channel is closed when Run returns.
func (g *Gateway) Events() <-chan *Message {
	return g.events
}

// Run connects and serves the session until the context is cancelled,
// re-dialing dropped connections with a fixed delay.
func (g *Gateway) Run(ctx context.Context) error {
	defer close(g.events)

	for {
		if err := g.runSession(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			g.logger.Warn("gateway session ended", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(g.config.ReconnectDelay):
		}
	}
}

// runSession runs one connect-identify-read cycle.
func (g *Gateway) runSession(ctx context.Context) error {
	url, err := g.client.GatewayURL(ctx)
	if err != nil {
		return fmt.Errorf("discover gateway: %w", err)
	}

	conn, err := websocket.Dial(url+"/?v=10&encoding=json", "", "https://discord.com")
	if err != nil {
		return fmt.Errorf("dial gateway: %w", err)
	}
	defer conn.Close()

	// Close the socket when the context dies so the blocking reads below
	// unblock promptly.
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sessionCtx.Done()
		conn.Close()
	}()

	// The server speaks first with hello.
	var hello payload
	if err := websocket.JSON.Receive(conn, &hello); err != nil {
		return fmt.Errorf("read hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("unexpected first opcode %d", hello.Op)
	}
	var helloD helloData
	if err := json.Unmarshal(hello.D, &helloD); err != nil {
		return fmt.Errorf("decode hello: %w", err)
	}

	go g.heartbeatLoop(sessionCtx, conn, time.Duration(helloD.HeartbeatInterval)*time.Millisecond)

	if err := g.identify(conn); err != nil {
		return fmt.Errorf("identify: %w", err)
	}

	for {
		var frame payload
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		if frame.S != nil {
			g.lastSeq.Store(*frame.S)
		}

		switch frame.Op {
		case opDispatch:
			g.handleDispatch(ctx, &frame)
		case opHeartbeat:
			if err := g.sendHeartbeat(conn); err != nil {
				return fmt.Errorf("requested heartbeat: %w", err)
			}
		case opReconnect, opInvalidSess:
			return fmt.Errorf("server requested reconnect (op %d)", frame.Op)
		case opHeartbeatAck:
			// Nothing to track; a dead session surfaces as a read error.
		}
	}
}

func (g *Gateway) identify(conn *websocket.Conn) error {
	d, err := json.Marshal(identifyData{
		Token:   g.config.Token,
		Intents: g.config.Intents,
		Properties: identifyProperties{
			OS:      "linux",
			Browser: "dailyproof",
			Device:  "dailyproof",
		},
	})
	if err != nil {
		return err
	}
	return websocket.JSON.Send(conn, payload{Op: opIdentify, D: d})
}

func (g *Gateway) sendHeartbeat(conn *websocket.Conn) error {
	seq, err := json.Marshal(g.lastSeq.Load())
	if err != nil {
		return err
	}
	return websocket.JSON.Send(conn, payload{Op: opHeartbeat, D: seq})
}

func (g *Gateway) heartbeatLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := g.sendHeartbeat(conn); err != nil {
				g.logger.Warn("heartbeat failed", "error", err)
				conn.Close()
				return
			}
		}
	}
}

func (g *Gateway) handleDispatch(ctx context.Context, frame *payload) {
	switch frame.T {
	case "READY":
		var ready readyData
		if err := json.Unmarshal(frame.D, &ready); err != nil {
			g.logger.Warn("failed to decode READY", "error", err)
			return
		}
		if ready.User != nil {
			g.botUserID.Store(ready.User.ID)
		}
		g.logger.Info("gateway ready", "session_id", ready.SessionID)

	case "MESSAGE_CREATE":
		var msg Message
		if err := json.Unmarshal(frame.D, &msg); err != nil {
			g.logger.Warn("failed to decode MESSAGE_CREATE", "error", err)
			return
		}
		if msg.Author == nil || msg.Author.Bot {
			return
		}
		if id, ok := g.botUserID.Load().(string); ok && msg.Author.ID == id {
			return
		}

		select {
		case g.events <- &msg:
		case <-ctx.Done():
		default:
			// A full buffer means the consumer stalled; dropping a message
			// beats blocking the heartbeat reads.
			g.logger.Warn("event buffer full, dropping message", "channel_id", msg.ChannelID)
		}
	}
}
