package types

import "time"

// Credentials holds an OAuth token and its scopes
type Credentials struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	TokenType    string    `json:"tokenType"`
	Expiry       time.Time `json:"expiry"`
	Scopes       []string  `json:"scopes"`
}

// StoredCredentials is the on-disk/keyring representation of a profile's token
type StoredCredentials struct {
	Profile     string      `json:"profile"`
	Credentials Credentials `json:"credentials"`
	SavedAt     time.Time   `json:"savedAt"`
}
