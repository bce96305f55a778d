package models

// Session holds the authenticated token pair and the user snapshot cached at
// login time. The session store owns the only mutable copy; everything else
// sees values.
type Session struct {
	// AccessToken is passed as the `token` header on every backend call.
	AccessToken string

	// RefreshToken is persisted alongside the access token but never
	// exchanged: there is no refresh flow. A rejected access token means
	// the user re-authenticates.
	RefreshToken string

	// LoggedIn is the locally tracked flag set on login and cleared on
	// logout. It is checked together with token presence: neither alone
	// counts as authenticated.
	LoggedIn bool

	// User is the profile snapshot returned by login/verify. Nil until a
	// successful authentication. Not refreshed automatically.
	User *User
}

// User is a registered account's profile as of the last authentication.
type User struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	UserType  string `json:"userType"`
}
