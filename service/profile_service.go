package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ecodao/sigil/core"
	"github.com/ecodao/sigil/internal/logger"
	"github.com/ecodao/sigil/ports"
)

const (
	profilePointerPrefix = "profile:cid:"
	storeCallTimeout     = 5 * time.Second
)

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	AvatarRef   *string
}

// ProfileService manages profile documents in the content-addressed blob
// store. Blobs are immutable; the only mutable state is the identity -> CID
// pointer kept in the KV store. Every save writes a new blob and repoints,
// last writer wins: concurrent saves for the same identity can lose an
// update. Hardening would require CAS on the previous CID.
type ProfileService struct {
	store  ports.Store
	blobs  ports.BlobStore
	pinner ports.Pinner
	events ports.EventPublisher
	log    *logger.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(
	store ports.Store,
	blobs ports.BlobStore,
	pinner ports.Pinner,
	events ports.EventPublisher,
	log *logger.Logger,
) *ProfileService {
	return &ProfileService{
		store:  store,
		blobs:  blobs,
		pinner: pinner,
		events: events,
		log:    log,
	}
}

// GetCurrent resolves the pointer for an identity and fetches the current
// profile document. Returns core.ErrNotFound when no profile exists.
func (s *ProfileService) GetCurrent(ctx context.Context, identity string) (*core.ProfileDocument, error) {
	identity, err := core.NormalizeAddress(identity)
	if err != nil {
		return nil, err
	}
	return s.getCurrent(ctx, identity)
}

func (s *ProfileService) getCurrent(ctx context.Context, identity string) (*core.ProfileDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, storeCallTimeout)
	defer cancel()

	cid, err := s.store.Get(ctx, profilePointerPrefix+identity)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve profile pointer: %w", err)
	}

	data, err := s.blobs.Get(ctx, cid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile blob %s: %w", cid, err)
	}

	var doc core.ProfileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile blob %s: %w", cid, err)
	}

	return &doc, nil
}

// GetOrCreate returns the profile for an identity, lazily creating and
// persisting a default document on first access.
func (s *ProfileService) GetOrCreate(ctx context.Context, identity string) (*core.ProfileDocument, bool, error) {
	identity, err := core.NormalizeAddress(identity)
	if err != nil {
		return nil, false, err
	}

	doc, err := s.getCurrent(ctx, identity)
	if err == nil {
		return doc, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, err
	}

	doc = core.NewProfileDocument(identity, time.Now().UTC())
	if _, err := s.save(ctx, doc); err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Update applies the given field changes and persists a new profile blob.
// Returns the updated document and its CID.
func (s *ProfileService) Update(ctx context.Context, identity string, upd ProfileUpdate) (*core.ProfileDocument, string, error) {
	doc, _, err := s.GetOrCreate(ctx, identity)
	if err != nil {
		return nil, "", err
	}

	if upd.DisplayName != nil {
		doc.DisplayName = *upd.DisplayName
	}
	if upd.Bio != nil {
		doc.Bio = *upd.Bio
	}
	if upd.AvatarRef != nil {
		doc.AvatarRef = *upd.AvatarRef
	}

	cid, err := s.save(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	return doc, cid, nil
}

// Follow adds target to follower's following set and follower to target's
// followers set. The two saves are independent: a crash between them leaves
// an asymmetric graph. That window is accepted in this design.
func (s *ProfileService) Follow(ctx context.Context, follower, target string) error {
	follower, target, err := s.normalizePair(follower, target)
	if err != nil {
		return err
	}

	followerDoc, _, err := s.GetOrCreate(ctx, follower)
	if err != nil {
		return err
	}
	targetDoc, _, err := s.GetOrCreate(ctx, target)
	if err != nil {
		return err
	}

	followerDoc.AddFollowing(target)
	targetDoc.AddFollower(follower)

	if _, err := s.save(ctx, followerDoc); err != nil {
		return err
	}
	if _, err := s.save(ctx, targetDoc); err != nil {
		return err
	}

	if err := s.events.PublishGraphChanged(ctx, follower, target, true); err != nil {
		s.log.Warn("failed to publish graph event", "error", err)
	}
	return nil
}

// Unfollow removes the edge in both directions. Removing an absent edge is a
// no-op, not an error.
func (s *ProfileService) Unfollow(ctx context.Context, follower, target string) error {
	follower, target, err := s.normalizePair(follower, target)
	if err != nil {
		return err
	}

	followerDoc, _, err := s.GetOrCreate(ctx, follower)
	if err != nil {
		return err
	}
	targetDoc, _, err := s.GetOrCreate(ctx, target)
	if err != nil {
		return err
	}

	followerDoc.RemoveFollowing(target)
	targetDoc.RemoveFollower(follower)

	if _, err := s.save(ctx, followerDoc); err != nil {
		return err
	}
	if _, err := s.save(ctx, targetDoc); err != nil {
		return err
	}

	if err := s.events.PublishGraphChanged(ctx, follower, target, false); err != nil {
		s.log.Warn("failed to publish graph event", "error", err)
	}
	return nil
}

// Followers lists the followers of an identity.
func (s *ProfileService) Followers(ctx context.Context, identity string) ([]string, error) {
	doc, err := s.GetCurrent(ctx, identity)
	if err != nil {
		return nil, err
	}
	return doc.Followers, nil
}

// Following lists the identities an identity follows.
func (s *ProfileService) Following(ctx context.Context, identity string) ([]string, error) {
	doc, err := s.GetCurrent(ctx, identity)
	if err != nil {
		return nil, err
	}
	return doc.Following, nil
}

func (s *ProfileService) normalizePair(a, b string) (string, string, error) {
	a, err := core.NormalizeAddress(a)
	if err != nil {
		return "", "", err
	}
	b, err = core.NormalizeAddress(b)
	if err != nil {
		return "", "", err
	}
	if a == b {
		return "", "", core.ErrSelfFollow
	}
	return a, b, nil
}

// save stamps updated_at, writes a new immutable blob, repoints the identity
// to its CID and requests pinning. Pin failures are logged, never fatal: the
// blob stays fetchable by CID regardless of pin status.
func (s *ProfileService) save(ctx context.Context, doc *core.ProfileDocument) (string, error) {
	doc.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, storeCallTimeout)
	defer cancel()

	cid, err := s.blobs.Put(callCtx, data)
	if err != nil {
		return "", fmt.Errorf("failed to write profile blob: %w", err)
	}

	if err := s.store.Set(callCtx, profilePointerPrefix+doc.Identity, cid, 0); err != nil {
		return "", fmt.Errorf("failed to repoint profile: %w", err)
	}

	if err := s.pinner.Pin(callCtx, cid, "profile_"+doc.Identity[:10]); err != nil {
		s.log.Warn("failed to pin profile blob", "cid", cid, "error", err)
	}

	if err := s.events.PublishProfileUpdated(ctx, doc.Identity, cid); err != nil {
		s.log.Warn("failed to publish profile event", "error", err)
	}

	s.log.Debug("profile saved", "identity", doc.Identity, "cid", cid)
	return cid, nil
}
