package model

// AuthUser is the identity returned by login.
type AuthUser struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role"`
	ClientID  string `json:"clientId,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role,omitempty"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	User        AuthUser `json:"user"`
	AccessToken string   `json:"access_token"`
}

// RefreshResult is the body of a successful token refresh.
type RefreshResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}
