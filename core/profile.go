package core

import "time"

// ProfileDocument is a user profile stored as an immutable content-addressed
// blob. Every mutation produces a new blob; only the identity -> CID pointer
// kept outside the blob is mutable.
type ProfileDocument struct {
	Identity    string    `json:"identity"`
	DisplayName string    `json:"display_name,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	AvatarRef   string    `json:"avatar_ref,omitempty"`
	Followers   []string  `json:"followers"`
	Following   []string  `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProfileDocument constructs a default document for a first-time identity.
// The address must already be normalized.
func NewProfileDocument(identity string, now time.Time) *ProfileDocument {
	name := identity
	if len(name) > 10 {
		name = name[:10]
	}
	return &ProfileDocument{
		Identity:    identity,
		DisplayName: "user_" + name,
		Followers:   []string{},
		Following:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddFollower records a follower, ignoring duplicates and self-references.
func (p *ProfileDocument) AddFollower(identity string) {
	p.Followers = addToSet(p.Followers, identity, p.Identity)
}

// RemoveFollower removes a follower; removing an absent entry is a no-op.
func (p *ProfileDocument) RemoveFollower(identity string) {
	p.Followers = removeFromSet(p.Followers, identity)
}

// AddFollowing records a followed identity, ignoring duplicates and
// self-references.
func (p *ProfileDocument) AddFollowing(identity string) {
	p.Following = addToSet(p.Following, identity, p.Identity)
}

// RemoveFollowing removes a followed identity; absent entries are a no-op.
func (p *ProfileDocument) RemoveFollowing(identity string) {
	p.Following = removeFromSet(p.Following, identity)
}

// IsFollowing reports whether the document lists identity in its following set.
func (p *ProfileDocument) IsFollowing(identity string) bool {
	for _, v := range p.Following {
		if v == identity {
			return true
		}
	}
	return false
}

func addToSet(set []string, value, self string) []string {
	if value == self {
		return set
	}
	for _, v := range set {
		if v == value {
			return set
		}
	}
	return append(set, value)
}

func removeFromSet(set []string, value string) []string {
	for i, v := range set {
		if v == value {
			return append(set[:i], set[i+1:]...)
		}
	}
	return set
}
