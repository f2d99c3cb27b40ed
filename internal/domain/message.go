package domain

import (
	"net/url"
	"time"
)

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdvisor Role = "advisor"
)

// Message is a single chat entry. Messages are immutable once appended to a
// session; Seq is the 1-based append position and defines display order.
type Message struct {
	ID        string
	Seq       int
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Link is a titled web resource extracted from an advisor response.
type Link struct {
	Title string
	URL   string
}

// Host returns the hostname shown under the link title, or the raw URL when it
// does not parse as an absolute URL.
func (l Link) Host() string {
	u, err := url.Parse(l.URL)
	if err != nil || u.Hostname() == "" {
		return l.URL
	}
	return u.Hostname()
}
