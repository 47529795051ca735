package flow

import (
	"context"
	"time"
)

// DefaultFollowUpTimeout is how long a vent thread waits for the member.
const DefaultFollowUpTimeout = 10 * time.Minute

// FollowUp waits for any message from userID in channelID. prompt runs
// after the listener is in place.
func (r *Registry) FollowUp(ctx context.Context, userID, channelID string, timeout time.Duration, prompt func() error) (Result, error) {
	return r.Await(ctx, Spec{
		Kind:      KindFollowUp,
		UserID:    userID,
		ChannelID: channelID,
		Timeout:   timeout,
	}, prompt)
}
