package mapping

import "time"

// DefaultRun is the name of the single run state row.
const DefaultRun = "default"

// Mapping links a source key to the remote id it was created as.
// A row is written once and never rewritten.
type Mapping struct {
	Kind      string    `gorm:"column:kind;primaryKey;size:32" json:"kind"`
	SourceKey string    `gorm:"column:source_key;primaryKey;size:255" json:"source_key"`
	RemoteID  string    `gorm:"column:remote_id;size:64;not null" json:"remote_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the table name.
func (Mapping) TableName() string {
	return "mappings"
}

// ContentHash is the hash of the payload last sent for a source key.
type ContentHash struct {
	Kind      string    `gorm:"column:kind;primaryKey;size:32"`
	SourceKey string    `gorm:"column:source_key;primaryKey;size:255"`
	Hash      string    `gorm:"column:hash;size:64;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (ContentHash) TableName() string {
	return "content_hashes"
}

// RunState records the start time of the last finished run.
type RunState struct {
	Name    string    `gorm:"column:name;primaryKey;size:32"`
	LastRun time.Time `gorm:"column:last_run"`
}

// TableName overrides the table name.
func (RunState) TableName() string {
	return "run_states"
}

// OAuthToken persists the latest token issued to the remote client so
// restarts reuse the rotated refresh token.
type OAuthToken struct {
	Name         string    `gorm:"column:name;primaryKey;size:64"`
	AccessToken  string    `gorm:"column:access_token;type:text"`
	RefreshToken string    `gorm:"column:refresh_token;type:text"`
	TokenType    string    `gorm:"column:token_type;size:32"`
	Expiry       time.Time `gorm:"column:expiry"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
