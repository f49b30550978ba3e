package models

// User is the directory record for a ticket holder. The user directory is an
// external service; only the fields notifications need are mapped.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
