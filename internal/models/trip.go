package models

// Trip represents one shared-expense group.
//
// Members are display names only. Which user (if any) has claimed a name is
// not stored on the trip; it is derived server-side and fetched as a
// MemberPartition via the trip's invite code.
type Trip struct {
	// TripID is the backend identifier for the trip.
	TripID string `json:"tripId"`

	// TripName is the display name of the trip (e.g. "Goa 2025").
	TripName string `json:"tripName"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// Members is the full list of member display names, free and claimed
	// alike, in creation order.
	Members []string `json:"members"`

	// CreatorID is the user ID of the trip creator.
	CreatorID string `json:"creatorId"`

	// InviteCode is the sole token of the linking protocol. Unique per
	// trip; at least 6 characters.
	InviteCode string `json:"inviteCode"`

	// CreatedAt is the backend creation timestamp (RFC 3339 string,
	// passed through for display).
	CreatedAt string `json:"createdAt"`

	// IsDeleted marks a soft-deleted trip still present in listings.
	IsDeleted bool `json:"isDeleted,omitempty"`
}

// MemberPartition is the free/not-free split of a trip's member names as of
// one fetch. It is derived data: never cached across calls, never patched
// locally. A name appears in exactly one of the two lists.
type MemberPartition struct {
	TripID   string `json:"tripId"`
	TripName string `json:"tripName"`

	// Free are names no user has claimed yet. Only these are valid
	// targets for linking.
	Free []string `json:"freeMembers"`

	// NotFree are names already claimed by some user.
	NotFree []string `json:"notFreeMembers"`

	TotalMembers int `json:"totalMembers"`
	FreeCount    int `json:"freeCount"`
}

// IsFree reports whether name is an unclaimed slot in this partition.
func (p *MemberPartition) IsFree(name string) bool {
	for _, m := range p.Free {
		if m == name {
			return true
		}
	}
	return false
}
