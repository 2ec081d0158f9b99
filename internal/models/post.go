// Package models defines the domain entities and error types for the application.
package models

// Author is the display identity attached to a post. Every generated post
// carries the same synthetic author; there are no user accounts.
type Author struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// Stats holds cosmetic engagement counts. They are randomized at creation
// and never updated afterwards.
type Stats struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// Post is one synthetic feed entry: a prompt, a generated caption, a
// generated image, and cosmetic stats.
type Post struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds, sort key only
	Prompt    string `json:"prompt"`
	Caption   string `json:"caption"`
	ImageURL  string `json:"imageUrl"`
	ThumbURL  string `json:"thumbUrl,omitempty"`
	User      Author `json:"user"`
	Stats     Stats  `json:"stats"`
}

// DefaultAuthor is the fixed identity used for all generated posts.
var DefaultAuthor = Author{
	Name:   "Aura",
	Handle: "aura.daily",
}
