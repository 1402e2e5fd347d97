package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Client is one open event stream. UserID is uuid.Nil for anonymous
// visitors on the public stream.
type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan Message

	done chan struct{}
	once sync.Once
}

// OwnedBy reports whether userID opened this stream. Anonymous streams
// belong to nobody.
func (c *Client) OwnedBy(userID uuid.UUID) bool {
	return c != nil && c.UserID != uuid.Nil && c.UserID == userID
}

// Done is closed once the hub detaches the client.
func (c *Client) Done() <-chan struct{} { return c.done }
