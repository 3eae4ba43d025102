package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecodao/sigil/adapters/blob"
	"github.com/ecodao/sigil/adapters/events"
	"github.com/ecodao/sigil/adapters/pin"
	"github.com/ecodao/sigil/adapters/store"
	"github.com/ecodao/sigil/core"
	"github.com/ecodao/sigil/internal/logger"
)

const (
	addrAlice = "0x8ba1f109551bd432803012645ac136ddd64dba72"
	addrBob   = "0x00000000000000000000000000000000000000bb"
)

type profileFixture struct {
	profiles *ProfileService
	blobs    *blob.MemoryStore
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()

	blobs := blob.NewMemoryStore()
	profiles := NewProfileService(store.NewMemoryStore(), blobs, pin.NoopPinner{},
		events.NoopPublisher{}, logger.NewNoop())
	return &profileFixture{profiles: profiles, blobs: blobs}
}

func TestProfile_LazyCreateDefaults(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	doc, isNew, err := f.profiles.GetOrCreate(ctx, addrAlice)
	require.NoError(t, err)
	require.True(t, isNew)
	require.Equal(t, addrAlice, doc.Identity)
	require.Equal(t, "user_"+addrAlice[:10], doc.DisplayName)
	require.Empty(t, doc.Followers)
	require.Empty(t, doc.Following)
	require.False(t, doc.CreatedAt.IsZero())
	require.False(t, doc.UpdatedAt.Before(doc.CreatedAt))

	_, isNew, err = f.profiles.GetOrCreate(ctx, addrAlice)
	require.NoError(t, err)
	require.False(t, isNew)
}

func TestProfile_GetCurrent_Missing(t *testing.T) {
	f := newProfileFixture(t)

	_, err := f.profiles.GetCurrent(context.Background(), addrAlice)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestProfile_GetCurrent_InvalidAddress(t *testing.T) {
	f := newProfileFixture(t)

	_, err := f.profiles.GetCurrent(context.Background(), "not-an-address")
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestProfile_Update_NewBlobFetchableByCID(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	name := "alice"
	bio := "gm"
	doc, cid, err := f.profiles.Update(ctx, addrAlice, ProfileUpdate{
		DisplayName: &name,
		Bio:         &bio,
	})
	require.NoError(t, err)
	require.Equal(t, "alice", doc.DisplayName)
	require.Equal(t, "gm", doc.Bio)

	// The pointer target is an immutable blob holding exactly the saved doc.
	data, err := f.blobs.Get(ctx, cid)
	require.NoError(t, err)

	var stored core.ProfileDocument
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Equal(t, "alice", stored.DisplayName)
	require.Equal(t, "gm", stored.Bio)
	require.False(t, stored.UpdatedAt.Before(stored.CreatedAt))

	got, err := f.profiles.GetCurrent(ctx, addrAlice)
	require.NoError(t, err)
	require.Equal(t, "alice", got.DisplayName)
}

func TestProfile_Update_RepointsToNewCID(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	first := "alice"
	_, cid1, err := f.profiles.Update(ctx, addrAlice, ProfileUpdate{DisplayName: &first})
	require.NoError(t, err)

	second := "alice2"
	_, cid2, err := f.profiles.Update(ctx, addrAlice, ProfileUpdate{DisplayName: &second})
	require.NoError(t, err)
	require.NotEqual(t, cid1, cid2)

	// The old blob stays content-addressable, just orphaned.
	ok, err := f.blobs.Has(ctx, cid1)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestProfile_Update_PartialFieldsPreserved(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	name := "alice"
	bio := "gm"
	_, _, err := f.profiles.Update(ctx, addrAlice, ProfileUpdate{DisplayName: &name, Bio: &bio})
	require.NoError(t, err)

	avatar := "sha256:aa"
	doc, _, err := f.profiles.Update(ctx, addrAlice, ProfileUpdate{AvatarRef: &avatar})
	require.NoError(t, err)
	require.Equal(t, "alice", doc.DisplayName)
	require.Equal(t, "gm", doc.Bio)
	require.Equal(t, "sha256:aa", doc.AvatarRef)
}

func TestProfile_FollowUnfollow(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	require.NoError(t, f.profiles.Follow(ctx, addrAlice, addrBob))

	following, err := f.profiles.Following(ctx, addrAlice)
	require.NoError(t, err)
	require.Equal(t, []string{addrBob}, following)

	followers, err := f.profiles.Followers(ctx, addrBob)
	require.NoError(t, err)
	require.Equal(t, []string{addrAlice}, followers)

	// Duplicate follow does not duplicate entries.
	require.NoError(t, f.profiles.Follow(ctx, addrAlice, addrBob))
	following, err = f.profiles.Following(ctx, addrAlice)
	require.NoError(t, err)
	require.Len(t, following, 1)

	require.NoError(t, f.profiles.Unfollow(ctx, addrAlice, addrBob))

	following, err = f.profiles.Following(ctx, addrAlice)
	require.NoError(t, err)
	require.Empty(t, following)

	followers, err = f.profiles.Followers(ctx, addrBob)
	require.NoError(t, err)
	require.Empty(t, followers)
}

func TestProfile_Unfollow_AbsentEdgeIsNoop(t *testing.T) {
	f := newProfileFixture(t)

	require.NoError(t, f.profiles.Unfollow(context.Background(), addrAlice, addrBob))
}

func TestProfile_SelfFollow(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	err := f.profiles.Follow(ctx, addrAlice, addrAlice)
	require.ErrorIs(t, err, core.ErrSelfFollow)

	// Checksummed casing of the same address is still self.
	err = f.profiles.Follow(ctx, addrAlice, "0x8Ba1f109551bD432803012645Ac136ddd64DBA72")
	require.ErrorIs(t, err, core.ErrSelfFollow)
}

func TestProfile_NormalizesCase(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	require.NoError(t, f.profiles.Follow(ctx, "0x8Ba1f109551bD432803012645Ac136ddd64DBA72", addrBob))

	followers, err := f.profiles.Followers(ctx, addrBob)
	require.NoError(t, err)
	require.Equal(t, []string{addrAlice}, followers)
}
