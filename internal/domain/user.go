package domain

// User is a connection that successfully joined a room. Username and Room are
// stored in their normalized (trimmed, lower-cased) form.
type User struct {
	ID       string `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Room     string `json:"room" validate:"required"`
}
