package discord_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvecircle/dailyproof/internal/domain/member"
	api "github.com/solvecircle/dailyproof/internal/infrastructure/external/discord"
	bot "github.com/solvecircle/dailyproof/internal/interface/discord"
)

// fakeMessenger records outbound calls.
type fakeMessenger struct {
	mu       sync.Mutex
	messages []sentReply
	dms      map[string][]string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{dms: make(map[string][]string)}
}

func (f *fakeMessenger) SendMessage(_ context.Context, channelID, content string) (*api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentReply{ChannelID: channelID, Content: content})
	return &api.Message{}, nil
}

func (f *fakeMessenger) Reply(_ context.Context, channelID, messageID, content string) (*api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentReply{ChannelID: channelID, ReplyToID: messageID, Content: content})
	return &api.Message{}, nil
}

func (f *fakeMessenger) SendDM(_ context.Context, userID, content string) (*api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dms[userID] = append(f.dms[userID], content)
	return &api.Message{}, nil
}

func newRunningBot(t *testing.T, messenger bot.Messenger, events chan *api.Message, cfg bot.BotConfig) *bot.Bot {
	t.Helper()

	env := newRouterEnv(t, time.Minute)
	b := bot.NewBot(cfg, messenger, events)
	b.AttachRouter(env.router)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return b
}

func TestBot_DispatchRunsOnLoop(t *testing.T) {
	messenger := newFakeMessenger()
	events := make(chan *api.Message)
	b := newRunningBot(t, messenger, events, bot.DefaultBotConfig())

	var ran bool
	require.NoError(t, b.Dispatch(context.Background(), func(context.Context) {
		ran = true
	}))
	// Dispatch is synchronous, so the write above happened before return.
	assert.True(t, ran)
}

func TestBot_RespondReplyVsSend(t *testing.T) {
	messenger := newFakeMessenger()
	b := bot.NewBot(bot.DefaultBotConfig(), messenger, nil)

	require.NoError(t, b.Respond(context.Background(), "c1", "m1", "hi"))
	require.NoError(t, b.Respond(context.Background(), "c1", "", "plain"))

	require.Len(t, messenger.messages, 2)
	assert.Equal(t, "m1", messenger.messages[0].ReplyToID)
	assert.Empty(t, messenger.messages[1].ReplyToID)
}

func TestBot_RemindMemberNeedsKnownUserID(t *testing.T) {
	messenger := newFakeMessenger()
	events := make(chan *api.Message)
	b := newRunningBot(t, messenger, events, bot.DefaultBotConfig())

	alice := &member.Member{Handle: "alice", DisplayName: "Alice Smith"}

	// Nobody has messaged yet, so the ID is unknown.
	assert.Error(t, b.RemindMember(context.Background(), alice))

	events <- &api.Message{
		ID:        "m1",
		ChannelID: "dm-1",
		Author:    &api.User{ID: "u1", Username: "alice"},
		Content:   "hello",
	}

	require.Eventually(t, func() bool {
		return b.RemindMember(context.Background(), alice) == nil
	}, 2*time.Second, 10*time.Millisecond)

	messenger.mu.Lock()
	defer messenger.mu.Unlock()
	require.NotEmpty(t, messenger.dms["u1"])
	assert.Contains(t, messenger.dms["u1"][0], "Alice Smith")
}

func TestBot_AnnounceWithoutChannelIsNoop(t *testing.T) {
	messenger := newFakeMessenger()
	b := bot.NewBot(bot.DefaultBotConfig(), messenger, nil)

	require.NoError(t, b.Announce(context.Background(), "report ready"))
	assert.Empty(t, messenger.messages)

	cfg := bot.DefaultBotConfig()
	cfg.AdminChannelID = "admin-chan"
	b = bot.NewBot(cfg, messenger, nil)

	require.NoError(t, b.Announce(context.Background(), "report ready"))
	require.Len(t, messenger.messages, 1)
	assert.Equal(t, "admin-chan", messenger.messages[0].ChannelID)
}
