package core

// AccessPolicy maps user ids to permission tiers via a static allow-list.
// An empty allow-list means open access: everyone gets the full tier.
// Non-listed users are never rejected outright; they are silently served
// by the anonymous catalog client instead.
type AccessPolicy struct {
	allowed map[int64]struct{}
}

// NewAccessPolicy creates an access policy from the configured allow-list.
func NewAccessPolicy(allowedUsers []int64) *AccessPolicy {
	allowed := make(map[int64]struct{}, len(allowedUsers))
	for _, id := range allowedUsers {
		allowed[id] = struct{}{}
	}
	return &AccessPolicy{allowed: allowed}
}

// IsAllowed reports whether the user is on the allow-list, or whether the
// list is empty (open access).
func (p *AccessPolicy) IsAllowed(userID int64) bool {
	if len(p.allowed) == 0 {
		return true
	}
	_, ok := p.allowed[userID]
	return ok
}

// Tier returns the permission tier for the user.
func (p *AccessPolicy) Tier(userID int64) Tier {
	if p.IsAllowed(userID) {
		return TierFull
	}
	return TierDemo
}
