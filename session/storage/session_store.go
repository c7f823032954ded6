package storage

import (
	"time"

	"github.com/freekieb7/rawhttp/session"
)

const (
	// IdleTimeout is how long a session may go untouched before a sweep drops it.
	IdleTimeout   = 15 * time.Minute
	SweepInterval = time.Hour
)

type SessionStore interface {
	Name() string
	Close() error
	Create(attributes map[string]any, now time.Time) session.Session
	Has(id string) bool
	Get(id string) (session.Session, error)
	Touch(id string, now time.Time) bool
	Save(session session.Session) error
	Delete(id string) error
	Len() int
	Sweep(now time.Time, idle time.Duration) int
}
