// Package bot is the message-handling engine. A platform adapter feeds
// every inbound message to Service.HandleMessage; the service scans it
// for trigger words, resolves any flow waiting on it, and runs the
// command it names.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/kalambet/slaymom/internal/chat"
	"github.com/kalambet/slaymom/internal/clock"
	"github.com/kalambet/slaymom/internal/content"
	"github.com/kalambet/slaymom/internal/flow"
	"github.com/kalambet/slaymom/internal/profile"
	"github.com/kalambet/slaymom/internal/scan"
	"github.com/kalambet/slaymom/internal/storage"
)

// Platform is what the engine needs from the chat platform.
// Implemented by discord.Adapter.
type Platform interface {
	Send(ctx context.Context, channelID string, reply chat.Reply) error
	SendDirect(ctx context.Context, userID string, reply chat.Reply) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// CreateThread starts a thread under channelID and returns its ID.
	CreateThread(ctx context.Context, channelID string, opts chat.ThreadOptions) (string, error)
	AddThreadMember(ctx context.Context, threadID, userID string) error

	Member(ctx context.Context, guildID, userID string) (chat.Member, error)
	HasPermission(ctx context.Context, channelID, userID string, perm chat.Permission) (bool, error)
	TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error
}

// Content supplies the static text pools. Implemented by content.Library.
type Content interface {
	RandomGeneral() (string, bool)
	RandomComfort() (string, bool)
	Resources() content.Resources
}

// WarningStore records moderator warnings. Implemented by storage.Store.
type WarningStore interface {
	SaveWarning(w storage.Warning) error
}

// Config holds the tunables of the engine.
type Config struct {
	Prefix         string
	ConfirmTimeout time.Duration
	VentTimeout    time.Duration
	VentReplyDelay time.Duration
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		Prefix:         "!",
		ConfirmTimeout: flow.DefaultConfirmTimeout,
		VentTimeout:    flow.DefaultFollowUpTimeout,
		VentReplyDelay: 2 * time.Second,
	}
}

// Deps are the collaborators a Service is built from.
type Deps struct {
	Platform Platform
	Profiles *profile.Manager
	Flows    *flow.Registry
	Content  Content
	Warnings WarningStore
	Clock    clock.Clock
}

// Service is the bot engine. It is safe for concurrent use; the adapter
// may call HandleMessage from many goroutines.
type Service struct {
	cfg      Config
	platform Platform
	profiles *profile.Manager
	scanner  *scan.Scanner
	flows    *flow.Registry
	content  Content
	warnings WarningStore
	clock    clock.Clock
	logger   *slog.Logger
	pick     func(n int) int

	commands map[string]*command
	order    []*command

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Service.
func New(cfg Config, deps Deps) *Service {
	if cfg.Prefix == "" {
		cfg.Prefix = "!"
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		cfg:      cfg,
		platform: deps.Platform,
		profiles: deps.Profiles,
		scanner:  scan.New(deps.Profiles),
		flows:    deps.Flows,
		content:  deps.Content,
		warnings: deps.Warnings,
		clock:    deps.Clock,
		logger:   slog.Default(),
		pick:     rand.IntN,
		ctx:      ctx,
		cancel:   cancel,
	}
	s.registerCommands()
	return s
}

// Prefix returns the command prefix.
func (s *Service) Prefix() string { return s.cfg.Prefix }

// HandleMessage processes one inbound event. Messages from automated
// accounts are dropped. Any pending flow the event satisfies is resolved
// first. A message that names a command runs it in the background; any
// other message is scanned for trigger words.
func (s *Service) HandleMessage(ev chat.Event) {
	if ev.Bot || s.ctx.Err() != nil {
		return
	}

	s.flows.Dispatch(ev)

	cmd, args, ok := s.parse(ev.Content)
	if !ok {
		s.checkTriggers(ev)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(cmd, ev, args)
	}()
}

func (s *Service) checkTriggers(ev chat.Event) {
	if _, hit := s.scanner.Check(ev.Content); !hit {
		return
	}
	if err := s.platform.Send(s.ctx, ev.ChannelID, chat.Text(scan.WarningText)); err != nil {
		s.logger.Warn("posting content warning failed", "channel_id", ev.ChannelID, "error", err)
	}
}

func (s *Service) run(cmd *command, ev chat.Event, args string) {
	req := &request{ev: ev, args: args}
	s.logger.Debug("running command", "command", cmd.name, "user_id", ev.AuthorID, "channel_id", ev.ChannelID)

	err := cmd.run(s, s.ctx, req)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	var ue *usageError
	if errors.As(err, &ue) {
		s.reply(req, chat.Text(ue.msg))
		return
	}
	s.logger.Error("command failed", "command", cmd.name, "user_id", ev.AuthorID, "error", err)
	s.reply(req, chat.Text(msgSomethingWrong))
}

// Wait blocks until every running command has returned.
func (s *Service) Wait() { s.wg.Wait() }

// Close cancels pending flows and running commands, then waits for them.
func (s *Service) Close() {
	s.cancel()
	s.flows.Close()
	s.wg.Wait()
}

// reply sends to the channel the request came from. Delivery failures are
// logged; there is nobody else to tell.
func (s *Service) reply(req *request, r chat.Reply) {
	if err := s.platform.Send(s.ctx, req.ev.ChannelID, r); err != nil {
		s.logger.Warn("reply failed", "channel_id", req.ev.ChannelID, "error", err)
	}
}

// direct sends r to the author privately.
func (s *Service) direct(req *request, r chat.Reply) error {
	return s.platform.SendDirect(s.ctx, req.ev.AuthorID, r)
}

func (s *Service) choose(pool []string) string {
	return pool[s.pick(len(pool))]
}

// sleep waits d on the service clock, returning early on shutdown.
func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(d):
		return nil
	}
}
