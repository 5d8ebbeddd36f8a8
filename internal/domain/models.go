// Package domain defines the persistence models for LINE users, conversation
// turns, and merchant registration records. These types are mapped with GORM
// and form the core data layer of the relay.
package domain

import "time"

// User statuses.
const (
	UserStatusPending    = "pending"
	UserStatusRegistered = "registered"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Registration statuses.
const (
	RegistrationPending   = "pending"
	RegistrationCompleted = "completed"
)

// User represents a LINE end user known to the bot. A row is created (as
// pending) on the user's first webhook contact and refreshed on every
// subsequent one; it is never deleted by this service.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - LineUserID: the platform user identifier; globally unique.
//   - DisplayName / PictureURL: best-effort profile data from the LINE
//     profile API, refreshed on contact.
//   - Status: "pending" until a registration code is claimed, then
//     "registered".
//   - RegistrationCode / RegisteredAt: set once a claim succeeds.
type User struct {
	ID               string     `json:"id"                gorm:"type:char(36);primaryKey"`
	LineUserID       string     `json:"line_user_id"      gorm:"type:varchar(64);not null;uniqueIndex:ux_users_line_id"`
	DisplayName      string     `json:"display_name"      gorm:"type:varchar(255)"`
	PictureURL       string     `json:"picture_url"       gorm:"type:varchar(512)"`
	Status           string     `json:"status"            gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','registered')"`
	RegistrationCode *string    `json:"registration_code,omitempty" gorm:"type:varchar(16)"`
	RegisteredAt     *time.Time `json:"registered_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Turn is one message in a user's conversation history, authored either by
// the "user" or the "assistant". Turns for a user are totally ordered by
// creation time; retrieval reverses a bounded descending fetch so callers
// always see oldest-first ordering.
type Turn struct {
	ID         string    `json:"id"           gorm:"type:char(36);primaryKey"`
	LineUserID string    `json:"line_user_id" gorm:"type:varchar(64);not null;index:idx_user_turns,priority:1"`
	Role       string    `json:"role"         gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content    string    `json:"content"      gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"   gorm:"index:idx_user_turns,priority:2"`
}

// TableName returns the database table name for Turn.
func (Turn) TableName() string { return "turns" }

// Registration is an externally provisioned claim ticket created by the
// merchant back office. This service never inserts or deletes registrations;
// it only performs the pending→completed transition, which must happen at
// most once per row.
//
// Fields:
//   - Code: short numeric code the end user types into the chat.
//   - ShopCode / ShopName: the merchant context the ticket belongs to.
//   - Status: "pending" until claimed, then "completed".
//   - LineUserID / CompletedAt: bound atomically when the claim succeeds.
//   - ExpiresAt: claims against an expired ticket always miss.
type Registration struct {
	ID          string     `json:"id"           gorm:"type:char(36);primaryKey"`
	Code        string     `json:"code"         gorm:"type:varchar(16);not null;index:idx_registrations_code"`
	ShopCode    string     `json:"shop_code"    gorm:"type:varchar(64);not null"`
	ShopName    string     `json:"shop_name"    gorm:"type:varchar(255)"`
	Status      string     `json:"status"       gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','completed')"`
	LineUserID  string     `json:"line_user_id" gorm:"type:varchar(64)"`
	ExpiresAt   time.Time  `json:"expires_at"   gorm:"not null;index"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName returns the database table name for Registration.
func (Registration) TableName() string { return "registrations" }
