package ports

import "context"

// EventPublisher notifies other instances about auth and profile activity.
// Publishing is best-effort everywhere it is used.
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string, isNewProfile bool) error
	PublishLogout(ctx context.Context, address string) error
	PublishProfileUpdated(ctx context.Context, address, cid string) error
	PublishGraphChanged(ctx context.Context, follower, target string, following bool) error
}
