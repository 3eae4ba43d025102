package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ecodao/sigil/ports"
)

const (
	TopicLogin          = "sigil.auth.login"
	TopicLogout         = "sigil.auth.logout"
	TopicProfileUpdated = "sigil.profile.updated"
	TopicGraphChanged   = "sigil.graph.changed"
)

// LoginEvent is published after a successful signature verification.
type LoginEvent struct {
	Address      string `json:"address"`
	IsNewProfile bool   `json:"is_new_profile"`
}

// LogoutEvent is published on logout.
type LogoutEvent struct {
	Address string `json:"address"`
}

// ProfileUpdatedEvent is published after a profile blob is repointed.
type ProfileUpdatedEvent struct {
	Address string `json:"address"`
	CID     string `json:"cid"`
}

// GraphChangedEvent is published after a follow or unfollow.
type GraphChangedEvent struct {
	Follower  string `json:"follower"`
	Target    string `json:"target"`
	Following bool   `json:"following"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address string, isNewProfile bool) error {
	return p.publish(TopicLogin, LoginEvent{Address: address, IsNewProfile: isNewProfile})
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address string) error {
	return p.publish(TopicLogout, LogoutEvent{Address: address})
}

// PublishProfileUpdated publishes a profile update event.
func (p *WatermillPublisher) PublishProfileUpdated(ctx context.Context, address, cid string) error {
	return p.publish(TopicProfileUpdated, ProfileUpdatedEvent{Address: address, CID: cid})
}

// PublishGraphChanged publishes a follow or unfollow event.
func (p *WatermillPublisher) PublishGraphChanged(ctx context.Context, follower, target string, following bool) error {
	return p.publish(TopicGraphChanged, GraphChangedEvent{Follower: follower, Target: target, Following: following})
}
