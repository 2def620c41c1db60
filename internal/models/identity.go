package models

import (
	"fmt"
	"time"
)

// OnlineWindow is how recently an identity must have been seen to count
// as online in presence listings.
const OnlineWindow = 180 * time.Second

// Identity represents an anonymous, server-issued participant handle.
// The 6-digit ID is the primary key and is never auto-generated by the
// database; issuance and recovery both insert an explicit ID so that the
// unique primary key arbitrates concurrent claims.
type Identity struct {
	ID            int       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	DisplayName   string    `gorm:"not null;size:64" json:"display_name"`
	OriginAddress string    `gorm:"size:64" json:"origin_address"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastSeen      time.Time `gorm:"not null;index" json:"last_seen"`
}

// TableName returns the table name for Identity
func (Identity) TableName() string {
	return "identities"
}

// DisplayNameFor derives the fixed display name for an identity ID.
func DisplayNameFor(id int) string {
	return fmt.Sprintf("User%d", id)
}

// IdentityPresence is used for presence listings that include the
// derived online flag.
type IdentityPresence struct {
	Identity
	Online bool `json:"online"`
}
