package feed

import (
	"fmt"

	"github.com/instancio/instancio-sub017/random"
)

// Access is the order in which a Cursor hands out rows.
type Access int

const (
	// Sequential returns rows in order and fails once they run out.
	Sequential Access = iota
	// Cyclic returns rows in order and starts over after the last one.
	Cyclic
	// Random returns a uniformly chosen row on every call.
	Random
)

func (a Access) String() string {
	switch a {
	case Sequential:
		return "sequential"
	case Cyclic:
		return "cyclic"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// Cursor walks a feed. It is not safe for concurrent use.
type Cursor struct {
	feed   Feed
	access Access
	pos    int
}

// NewCursor creates a cursor positioned at row start.
func NewCursor(f Feed, access Access, start int) *Cursor {
	return &Cursor{feed: f, access: access, pos: start}
}

// Next returns the next row.
func (c *Cursor) Next(r random.Random) (Row, error) {
	n := c.feed.Len()
	if n == 0 {
		return nil, ErrEmpty
	}

	switch c.access {
	case Random:
		return c.feed.Row(r.IntRange(0, n-1)), nil
	case Cyclic:
		row := c.feed.Row(c.pos % n)
		c.pos++
		return row, nil
	default:
		if c.pos >= n {
			return nil, fmt.Errorf("%w: all %d rows used", ErrExhausted, n)
		}
		row := c.feed.Row(c.pos)
		c.pos++
		return row, nil
	}
}
