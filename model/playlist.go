package model

import (
	"time"

	"github.com/google/uuid"
)

// WatchLater is the protected system playlist, created on first run.
const WatchLater = "Watch Later"

type Playlist struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	System    bool
	ItemCount int
}
