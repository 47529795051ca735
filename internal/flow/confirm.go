package flow

import (
	"context"
	"strings"
	"time"

	"github.com/kalambet/slaymom/internal/chat"
)

// Decision is the answer to a yes/no confirmation.
type Decision int

const (
	DecisionYes Decision = iota + 1
	DecisionNo
	DecisionTimeout
	DecisionCancelled
)

func (d Decision) String() string {
	switch d {
	case DecisionYes:
		return "yes"
	case DecisionNo:
		return "no"
	case DecisionTimeout:
		return "timeout"
	case DecisionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DefaultConfirmTimeout is how long a member has to answer.
const DefaultConfirmTimeout = 30 * time.Second

// answer maps a message body to yes or no. Anything else is not an answer.
func answer(body string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(body)) {
	case "yes":
		return DecisionYes, true
	case "no":
		return DecisionNo, true
	}
	return 0, false
}

// ConfirmSpec returns the listener for a yes/no reply from userID in
// channelID. Other messages from the same member are ignored.
func ConfirmSpec(userID, channelID string, timeout time.Duration) Spec {
	return Spec{
		Kind:      KindConfirm,
		UserID:    userID,
		ChannelID: channelID,
		Timeout:   timeout,
		Match: func(ev chat.Event) bool {
			_, ok := answer(ev.Content)
			return ok
		},
	}
}

// Confirm asks for a yes/no reply. prompt sends the question and runs
// after the listener is in place.
func (r *Registry) Confirm(ctx context.Context, userID, channelID string, timeout time.Duration, prompt func() error) (Decision, error) {
	res, err := r.Await(ctx, ConfirmSpec(userID, channelID, timeout), prompt)
	if err != nil {
		return 0, err
	}
	switch res.Outcome {
	case Satisfied:
		d, _ := answer(res.Event.Content)
		return d, nil
	case TimedOut:
		return DecisionTimeout, nil
	default:
		return DecisionCancelled, nil
	}
}
