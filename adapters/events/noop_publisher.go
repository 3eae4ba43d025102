package events

import (
	"context"

	"github.com/ecodao/sigil/ports"
)

var _ ports.EventPublisher = (*NoopPublisher)(nil)

// NoopPublisher discards all events, for tests and single-instance setups.
type NoopPublisher struct{}

func (NoopPublisher) PublishLogin(ctx context.Context, address string, isNewProfile bool) error {
	return nil
}

func (NoopPublisher) PublishLogout(ctx context.Context, address string) error {
	return nil
}

func (NoopPublisher) PublishProfileUpdated(ctx context.Context, address, cid string) error {
	return nil
}

func (NoopPublisher) PublishGraphChanged(ctx context.Context, follower, target string, following bool) error {
	return nil
}
