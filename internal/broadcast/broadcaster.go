// Package broadcast posts one random affirmation a day to a configured
// channel.
//
// The first fire time is computed from the wall clock at startup, so a
// restart never shifts the schedule. After each fire the next one is
// exactly 24 hours later.
package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kalambet/slaymom/internal/chat"
	"github.com/kalambet/slaymom/internal/clock"
)

const period = 24 * time.Hour

// Sender delivers broadcasts. Implemented by the platform adapter.
type Sender interface {
	// ResolveChannel returns chat.ErrNotFound if the channel no longer
	// exists or is not visible.
	ResolveChannel(ctx context.Context, channelID string) error
	Send(ctx context.Context, channelID string, reply chat.Reply) error
	SendDirect(ctx context.Context, userID string, reply chat.Reply) error
}

// Pool supplies the affirmation text. Implemented by content.Library.
type Pool interface {
	RandomGeneral() (string, bool)
}

// Config holds the broadcaster settings.
type Config struct {
	ChannelID string
	At        TimeOfDay

	// Subscribers, if set, lists members who also get the affirmation
	// by direct message.
	Subscribers func() ([]string, error)
}

// Broadcaster fires once a day at Config.At.
type Broadcaster struct {
	cfg    Config
	sender Sender
	pool   Pool
	clock  clock.Clock
	logger *slog.Logger

	mu   sync.Mutex
	next time.Time
}

// New creates a Broadcaster.
func New(cfg Config, sender Sender, pool Pool, c clock.Clock) *Broadcaster {
	return &Broadcaster{
		cfg:    cfg,
		sender: sender,
		pool:   pool,
		clock:  c,
		logger: slog.Default(),
	}
}

// Run fires at every scheduled time until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	next := NextFire(b.clock.Now(), b.cfg.At)
	b.logger.Info("daily affirmation scheduled", "next", next, "channel_id", b.cfg.ChannelID)

	for {
		b.setNext(next)

		select {
		case <-ctx.Done():
			return nil
		case <-b.clock.After(next.Sub(b.clock.Now())):
		}

		if err := b.Fire(ctx); err != nil {
			b.logger.Warn("daily affirmation failed", "error", err)
		}

		next = next.Add(period)
		// After a suspend or a clock jump, skip missed days instead of
		// firing them back to back.
		if now := b.clock.Now(); !next.After(now) {
			next = NextFire(now, b.cfg.At)
		}
	}
}

// Fire sends one affirmation now. A missing channel or an empty pool is
// a skip, not an error. Direct-message failures are logged only.
func (b *Broadcaster) Fire(ctx context.Context) error {
	text, ok := b.pool.RandomGeneral()
	if !ok {
		b.logger.Warn("no general affirmations loaded, skipping")
		return nil
	}
	msg := Message(text)

	err := b.sendChannel(ctx, msg)
	b.sendSubscribers(ctx, msg)
	return err
}

func (b *Broadcaster) sendChannel(ctx context.Context, msg chat.Reply) error {
	if b.cfg.ChannelID == "" {
		b.logger.Debug("no affirmation channel configured, skipping")
		return nil
	}
	if err := b.sender.ResolveChannel(ctx, b.cfg.ChannelID); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			b.logger.Warn("affirmation channel not found, skipping", "channel_id", b.cfg.ChannelID)
			return nil
		}
		return err
	}
	return b.sender.Send(ctx, b.cfg.ChannelID, msg)
}

func (b *Broadcaster) sendSubscribers(ctx context.Context, msg chat.Reply) {
	if b.cfg.Subscribers == nil {
		return
	}
	ids, err := b.cfg.Subscribers()
	if err != nil {
		b.logger.Warn("listing affirmation subscribers failed", "error", err)
		return
	}
	for _, id := range ids {
		if err := b.sender.SendDirect(ctx, id, msg); err != nil {
			b.logger.Warn("affirmation DM failed", "user_id", id, "error", err)
		}
	}
}

// Next returns the next scheduled fire time, or the zero time before Run
// has started.
func (b *Broadcaster) Next() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.next
}

func (b *Broadcaster) setNext(t time.Time) {
	b.mu.Lock()
	b.next = t
	b.mu.Unlock()
}

// Message renders the daily affirmation card.
func Message(text string) chat.Reply {
	return chat.Card(chat.Embed{
		Title:       "💖 Daily Affirmation",
		Description: text,
		Color:       chat.ColorPink,
		Footer:      "Slayy Mom loves you! 🌈",
	})
}
