package presence

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bobsby23/Team-Chat/internal/event"
	"github.com/bobsby23/Team-Chat/internal/hub"
)

// DefaultTypingTTL is how long a typing signal stays visible without a
// refresh.
const DefaultTypingTTL = 3 * time.Second

// Config holds tracker settings.
type Config struct {
	// TypingTTL overrides the typing expiry. Zero means the default.
	TypingTTL time.Duration
}

// Tracker owns the per-room online sets and typing maps.
type Tracker struct {
	logger *slog.Logger
	hub    hub.Broadcaster
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	online map[string]map[string]struct{}
	typing map[string]map[string]time.Time
}

// New creates a tracker that announces changes through the given broadcaster.
func New(cfg Config, b hub.Broadcaster, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TypingTTL <= 0 {
		cfg.TypingTTL = DefaultTypingTTL
	}

	return &Tracker{
		logger: logger,
		hub:    b,
		ttl:    cfg.TypingTTL,
		now:    time.Now,
		online: make(map[string]map[string]struct{}),
		typing: make(map[string]map[string]time.Time),
	}
}

// Join adds the user to the room's online set and broadcasts the full list.
// Duplicate joins do not change the set but still announce it.
func (t *Tracker) Join(room, user string) hub.Result {
	t.mu.Lock()
	if t.online[room] == nil {
		t.online[room] = make(map[string]struct{})
	}
	t.online[room][user] = struct{}{}
	users := t.onlineLocked(room)
	t.mu.Unlock()

	t.logger.Debug("user joined", "room", room, "user", user, "online", len(users))
	return t.hub.Broadcast(event.UserJoined(user, users))
}

// Leave removes the user and broadcasts the updated list. Best-effort: it
// may never be called for abruptly disconnected clients.
func (t *Tracker) Leave(room, user string) hub.Result {
	t.mu.Lock()
	delete(t.online[room], user)
	if len(t.online[room]) == 0 {
		delete(t.online, room)
	}
	users := t.onlineLocked(room)
	t.mu.Unlock()

	t.logger.Debug("user left", "room", room, "user", user, "online", len(users))
	return t.hub.Broadcast(event.UserLeft(user, users))
}

// Touch adds the user to the online set without an announcement and returns
// the current list. Used by the message send path.
func (t *Tracker) Touch(room, user string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.online[room] == nil {
		t.online[room] = make(map[string]struct{})
	}
	t.online[room][user] = struct{}{}
	return t.onlineLocked(room)
}

// Online returns the room's current online list.
func (t *Tracker) Online(room string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.onlineLocked(room)
}

// MarkTyping upserts the user's typing timestamp and broadcasts the
// non-expired typing list. The actor is included; readers filter self.
func (t *Tracker) MarkTyping(room, user string) hub.Result {
	t.mu.Lock()
	if t.typing[room] == nil {
		t.typing[room] = make(map[string]time.Time)
	}
	t.typing[room][user] = t.now()
	users := t.sweepLocked(room)
	t.mu.Unlock()

	return t.hub.Broadcast(event.TypingUpdate(users))
}

// QueryTyping deletes entries older than the TTL for the room and returns
// the survivors. This sweep is the only expiry mechanism; staleness is
// bounded by the interval between queries.
func (t *Tracker) QueryTyping(room string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sweepLocked(room)
}

// onlineLocked returns a sorted copy of the room's online set.
func (t *Tracker) onlineLocked(room string) []string {
	users := make([]string, 0, len(t.online[room]))
	for user := range t.online[room] {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// sweepLocked drops stale typing entries and returns the rest sorted.
func (t *Tracker) sweepLocked(room string) []string {
	now := t.now()
	users := make([]string, 0, len(t.typing[room]))
	for user, last := range t.typing[room] {
		if now.Sub(last) >= t.ttl {
			delete(t.typing[room], user)
			continue
		}
		users = append(users, user)
	}
	if len(t.typing[room]) == 0 {
		delete(t.typing, room)
	}
	sort.Strings(users)
	return users
}
