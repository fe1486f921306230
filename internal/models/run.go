package models

import "time"

// Run is a submitted sequence with its three options.
// The payload is opaque: it is stored and shown, never interpreted.
type Run struct {
	ID int64 `gorm:"primaryKey"`

	Sequence string `gorm:"type:text;not null"`
	Option1  string `gorm:"size:20;not null"`
	Option2  string `gorm:"size:20;not null"`
	Option3  string `gorm:"size:20;not null"`

	// DateTime is set when the run is created and never changes.
	DateTime time.Time `gorm:"not null;index"`

	// AuthorID references the owning user. Set once at creation.
	AuthorID int64 `gorm:"column:user_id;not null;index"`

	// Author is loaded together with the run for display.
	Author *User `gorm:"foreignKey:AuthorID"`
}

// OwnedBy reports whether the run belongs to the given user.
func (r *Run) OwnedBy(u *User) bool {
	return u != nil && r.AuthorID == u.ID
}
