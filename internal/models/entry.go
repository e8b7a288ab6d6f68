package models

// Entry represents one shared-expense transaction within a room.
type Entry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// RoomID is the room this entry belongs to.
	RoomID string

	// Date is the Unix timestamp of when the expense happened
	// (user-supplied, distinct from CreatedAt).
	Date int64

	// Description is a short free-form label (e.g., "Groceries").
	Description string

	// Amount is the full expense amount in integer currency units.
	Amount int64

	// PaidBy is the user ID of the member who fronted the money.
	PaidBy string

	// CreatedAt is the Unix timestamp when the entry was recorded.
	CreatedAt int64

	// Members is the ordered list of participants splitting this entry.
	// It always includes the payer, whose PaidStatus is true at creation;
	// everyone else starts false and flips true when they settle.
	Members []EntryMember
}

// EntryMember is one participant's share status on an entry.
type EntryMember struct {
	UserID     string
	UserName   string
	PaidStatus bool
}

// Member returns the participant with the given user ID, or nil.
func (e *Entry) Member(userID string) *EntryMember {
	for i := range e.Members {
		if e.Members[i].UserID == userID {
			return &e.Members[i]
		}
	}
	return nil
}
