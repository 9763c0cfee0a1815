package discord

import "encoding/json"

// ══════════════════════════════════════════════════════════════════════════════
// REST API TYPES
// ══════════════════════════════════════════════════════════════════════════════

// ChannelTypeDM is the channel type of a direct-message channel.
const ChannelTypeDM = 1

// User represents a Discord user.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	GlobalName    string `json:"global_name,omitempty"`
	Bot           bool   `json:"bot,omitempty"`
}

// Member carries the guild-scoped fields of a message author.
type Member struct {
	Nick  string   `json:"nick,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Attachment represents a file attached to a message. URL is a transient
// CDN link; it expires and must be rehosted before anything durable
// references it.
type Attachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
	ProxyURL    string `json:"proxy_url,omitempty"`
}

// Channel represents a Discord channel.
type Channel struct {
	ID   string `json:"id"`
	Type int    `json:"type"`
}

// IsDM reports whether the channel is a direct-message channel.
func (c *Channel) IsDM() bool {
	return c.Type == ChannelTypeDM
}

// Message represents a Discord message.
type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	GuildID     string       `json:"guild_id,omitempty"`
	Author      *User        `json:"author,omitempty"`
	Member      *Member      `json:"member,omitempty"`
	Content     string       `json:"content"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// IsDM reports whether the message arrived outside any guild. The
// gateway omits guild_id for DM messages, which is the only signal a
// MESSAGE_CREATE carries.
func (m *Message) IsDM() bool {
	return m.GuildID == ""
}

// messageReference is the reply target of an outgoing message.
type messageReference struct {
	MessageID string `json:"message_id"`
}

// createMessageRequest is the body of POST /channels/{id}/messages.
type createMessageRequest struct {
	Content          string            `json:"content"`
	MessageReference *messageReference `json:"message_reference,omitempty"`
}

// createDMRequest is the body of POST /users/@me/channels.
type createDMRequest struct {
	RecipientID string `json:"recipient_id"`
}

// apiError is the JSON error body of a non-2xx REST response.
type apiError struct {
	Code       int     `json:"code"`
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after,omitempty"`
}

// gatewayInfo is the response of GET /gateway/bot.
type gatewayInfo struct {
	URL string `json:"url"`
}

// ══════════════════════════════════════════════════════════════════════════════
// GATEWAY TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Gateway opcodes.
const (
	opDispatch     = 0
	opHeartbeat    = 1
	opIdentify     = 2
	opReconnect    = 7
	opInvalidSess  = 9
	opHello        = 10
	opHeartbeatAck = 11
)

// Gateway intents required for message commands.
const (
	intentGuilds          = 1 << 0
	intentGuildMessages   = 1 << 9
	intentDirectMessages  = 1 << 12
	intentMessageContent  = 1 << 15
	defaultGatewayIntents = intentGuilds | intentGuildMessages | intentDirectMessages | intentMessageContent
)

// payload is one gateway frame in either direction.
type payload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

// helloData is the d field of the opcode 10 frame.
type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// identifyData is the d field of the opcode 2 frame.
type identifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties identifyProperties `json:"properties"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// readyData is the d field of the READY dispatch.
type readyData struct {
	SessionID string `json:"session_id"`
	User      *User  `json:"user"`
}
