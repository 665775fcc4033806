package domain

import "time"

// Post is a blog article. Content is Markdown; rendering is a client
// concern. Posts start unapproved and stay hidden from listings until an
// approver flips the flag.
type Post struct {
	ID        string
	Title     string
	Subtitle  string
	AuthorID  string
	Content   string
	Tags      []string
	Approved  bool
	Views     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
