package presence

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/bobsby23/Team-Chat/internal/event"
	"github.com/bobsby23/Team-Chat/internal/hub"
)

// recordingBroadcaster captures envelopes instead of fanning them out.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []event.Envelope
}

func (r *recordingBroadcaster) Broadcast(ev event.Envelope) hub.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return hub.Result{Sent: 1, Remaining: 1}
}

func (r *recordingBroadcaster) last(t *testing.T) event.Envelope {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		t.Fatal("no events broadcast")
	}
	return r.events[len(r.events)-1]
}

func TestJoinLeaveAlgebra(t *testing.T) {
	// The online set equals exactly the users whose last action was join.
	tests := []struct {
		name    string
		actions []struct {
			join bool
			user string
		}
		want []string
	}{
		{
			name: "simple joins",
			actions: []struct {
				join bool
				user string
			}{{true, "alice"}, {true, "bob"}},
			want: []string{"alice", "bob"},
		},
		{
			name: "duplicate join is idempotent",
			actions: []struct {
				join bool
				user string
			}{{true, "alice"}, {true, "alice"}},
			want: []string{"alice"},
		},
		{
			name: "leave removes",
			actions: []struct {
				join bool
				user string
			}{{true, "alice"}, {true, "bob"}, {false, "alice"}},
			want: []string{"bob"},
		},
		{
			name: "leave without join is a no-op",
			actions: []struct {
				join bool
				user string
			}{{false, "ghost"}, {true, "alice"}},
			want: []string{"alice"},
		},
		{
			name: "rejoin after leave",
			actions: []struct {
				join bool
				user string
			}{{true, "alice"}, {false, "alice"}, {true, "alice"}},
			want: []string{"alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(Config{}, &recordingBroadcaster{}, nil)
			for _, a := range tt.actions {
				if a.join {
					tr.Join("room", a.user)
				} else {
					tr.Leave("room", a.user)
				}
			}
			if got := tr.Online("room"); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Online = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoinBroadcastsFullList(t *testing.T) {
	rec := &recordingBroadcaster{}
	tr := New(Config{}, rec, nil)

	tr.Join("room", "alice")
	tr.Join("room", "bob")

	ev := rec.last(t)
	if ev.Type != event.TypeUserJoined || ev.Username != "bob" {
		t.Fatalf("event = %+v", ev)
	}
	if !reflect.DeepEqual(ev.OnlineUsers, []string{"alice", "bob"}) {
		t.Errorf("OnlineUsers = %v, want full list", ev.OnlineUsers)
	}
}

func TestLeaveBroadcastsUpdatedList(t *testing.T) {
	rec := &recordingBroadcaster{}
	tr := New(Config{}, rec, nil)

	tr.Join("room", "alice")
	tr.Join("room", "bob")
	tr.Leave("room", "alice")

	ev := rec.last(t)
	if ev.Type != event.TypeUserLeft || ev.Username != "alice" {
		t.Fatalf("event = %+v", ev)
	}
	if !reflect.DeepEqual(ev.OnlineUsers, []string{"bob"}) {
		t.Errorf("OnlineUsers = %v, want [bob]", ev.OnlineUsers)
	}
}

func TestRoomsAreIndependent(t *testing.T) {
	tr := New(Config{}, &recordingBroadcaster{}, nil)

	tr.Join("a", "alice")
	tr.Join("b", "bob")

	if got := tr.Online("a"); !reflect.DeepEqual(got, []string{"alice"}) {
		t.Errorf("room a = %v", got)
	}
	if got := tr.Online("b"); !reflect.DeepEqual(got, []string{"bob"}) {
		t.Errorf("room b = %v", got)
	}
}

func TestTypingExpiry(t *testing.T) {
	rec := &recordingBroadcaster{}
	tr := New(Config{}, rec, nil)

	base := time.Now()
	current := base
	tr.now = func() time.Time { return current }

	tr.MarkTyping("room", "alice")
	tr.MarkTyping("room", "bob")

	// Just under the threshold: both still typing.
	current = base.Add(DefaultTypingTTL - time.Millisecond)
	if got := tr.QueryTyping("room"); !reflect.DeepEqual(got, []string{"alice", "bob"}) {
		t.Errorf("QueryTyping = %v, want both", got)
	}

	// Refresh bob only, then cross alice's threshold.
	tr.MarkTyping("room", "bob")
	current = base.Add(DefaultTypingTTL)
	if got := tr.QueryTyping("room"); !reflect.DeepEqual(got, []string{"bob"}) {
		t.Errorf("QueryTyping = %v, want [bob]", got)
	}

	// A stale entry must never be reported again.
	if got := tr.QueryTyping("room"); !reflect.DeepEqual(got, []string{"bob"}) {
		t.Errorf("QueryTyping repeat = %v, want [bob]", got)
	}
}

func TestMarkTypingBroadcastsFilteredList(t *testing.T) {
	rec := &recordingBroadcaster{}
	tr := New(Config{}, rec, nil)

	base := time.Now()
	current := base
	tr.now = func() time.Time { return current }

	tr.MarkTyping("room", "alice")
	current = base.Add(DefaultTypingTTL + time.Millisecond)
	tr.MarkTyping("room", "bob")

	ev := rec.last(t)
	if ev.Type != event.TypeTypingUpdate {
		t.Fatalf("event = %+v", ev)
	}
	// alice expired before bob's signal; the payload holds only bob.
	if !reflect.DeepEqual(ev.Typing, []string{"bob"}) {
		t.Errorf("Typing = %v, want [bob]", ev.Typing)
	}
}

func TestTouchDoesNotBroadcast(t *testing.T) {
	rec := &recordingBroadcaster{}
	tr := New(Config{}, rec, nil)

	users := tr.Touch("room", "alice")
	if !reflect.DeepEqual(users, []string{"alice"}) {
		t.Errorf("Touch = %v", users)
	}
	if len(rec.events) != 0 {
		t.Errorf("Touch broadcast %d events, want 0", len(rec.events))
	}
}
