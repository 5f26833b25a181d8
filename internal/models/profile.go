package models

// UserProfile is the account summary returned by the backend.
type UserProfile struct {
	FullName       string
	Phone          string
	Email          string
	SessionBalance int
	AvatarURL      string
}

// LoginResult carries the session cookie values captured at login.
type LoginResult struct {
	Token string
	ID    string
}
