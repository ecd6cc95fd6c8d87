package domain

import "time"

// Post is the aggregate for blog entries. Drafts start with Published false
// and become publicly readable only after an explicit publish.
type Post struct {
	ID        int64
	Title     string
	Content   string
	ImageURL  *string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AdminRole is the only role the service knows about. The admin identity is
// a single static credential pair from configuration, not a user table.
const AdminRole = "admin"
