package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bobsby23/Team-Chat/internal/api"
	"github.com/bobsby23/Team-Chat/internal/event"
	"github.com/bobsby23/Team-Chat/internal/model"
	"github.com/bobsby23/Team-Chat/internal/poller"
)

// State of the push channel.
type State int32

const (
	// StateDisconnected is terminal: reconnect attempts are exhausted and
	// only the polling fallback keeps the view fresh.
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Default reconnect behavior.
const (
	DefaultReconnectBaseDelay = time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultMaxReconnects      = 5
)

// Config holds stream manager configuration.
type Config struct {
	Room     string // Invite code; empty means the public room.
	Username string

	ReconnectBaseDelay time.Duration // default 1s
	ReconnectMaxDelay  time.Duration // default 30s
	MaxReconnects      int           // default 5
	PollInterval       time.Duration // fallback poll interval, default 2s
}

// Manager runs the push channel and folds its events, plus any fallback
// poll results, into one local room view.
type Manager struct {
	cfg       Config
	transport Transport
	rest      *api.Client
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	state         atomic.Int32
	onStateChange func(State)
	onEvent       func(event.Envelope)

	fallbackMu sync.Mutex
	fallback   *poller.Poller

	mu           sync.Mutex
	connectionID string
	messages     []model.Message
	index        map[string]int // message id -> position in messages
	online       []string
	typing       []string
}

// New creates a stream manager. Start must be called before it connects.
func New(cfg Config, transport Transport, rest *api.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if cfg.ReconnectMaxDelay <= 0 {
		cfg.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if cfg.MaxReconnects <= 0 {
		cfg.MaxReconnects = DefaultMaxReconnects
	}
	return &Manager{
		cfg:       cfg,
		transport: transport,
		rest:      rest,
		logger:    logger.With("component", "stream"),
		index:     make(map[string]int),
	}
}

// OnStateChange registers a state transition callback. Must be set before
// Start; the callback runs on the manager goroutine.
func (m *Manager) OnStateChange(fn func(State)) {
	m.onStateChange = fn
}

// OnEvent registers a callback invoked for every decoded event after it is
// applied. Must be set before Start.
func (m *Manager) OnEvent(fn func(event.Envelope)) {
	m.onEvent = fn
}

// Start announces presence, loads the initial snapshot, and begins the
// connect/reconnect loop.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if online, err := m.rest.Join(m.ctx, m.cfg.Room, m.cfg.Username); err != nil {
		m.logger.Warn("join failed", "room", m.cfg.Room, "err", err)
	} else {
		m.setOnline(online)
	}
	if snap, err := m.rest.Snapshot(m.ctx, m.cfg.Room); err != nil {
		m.logger.Warn("initial snapshot failed", "room", m.cfg.Room, "err", err)
	} else {
		m.mergeMessages(snap.Messages)
	}

	m.wg.Add(1)
	go m.run()
	return nil
}

// Close tears everything down and best-effort signals departure.
func (m *Manager) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	m.transport.Close()
	m.wg.Wait()
	m.stopFallback()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := m.rest.Leave(ctx, m.cfg.Room, m.cfg.Username); err != nil {
		m.logger.Debug("leave failed", "err", err)
	}
	return nil
}

// State returns the current push-channel state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// ConnectionID returns the id from the last handshake frame.
func (m *Manager) ConnectionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectionID
}

// Messages returns a copy of the local ordered message list.
func (m *Manager) Messages() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// OnlineUsers returns the last presence snapshot.
func (m *Manager) OnlineUsers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.online...)
}

// TypingUsers returns who is typing, excluding this client's user.
func (m *Manager) TypingUsers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.typing...)
}

// Send posts a message with an optimistic local insertion. On failure the
// local entry is rolled back.
func (m *Manager) Send(ctx context.Context, content string) (model.Message, error) {
	local := model.Message{
		ID:        fmt.Sprintf("local_%d", time.Now().UnixNano()),
		Sender:    m.cfg.Username,
		Content:   content,
		Timestamp: time.Now(),
	}
	m.applyNew(local)

	msg, err := m.rest.SendMessage(ctx, m.cfg.Room, m.cfg.Username, content)
	if err != nil {
		m.removeMessage(local.ID)
		return model.Message{}, err
	}

	m.removeMessage(local.ID)
	m.applyNew(msg)
	return msg, nil
}

// Typing signals that this user is typing. Best-effort.
func (m *Manager) Typing(ctx context.Context) error {
	return m.rest.Typing(ctx, m.cfg.Room, m.cfg.Username)
}

// ToggleReaction flips this user's reaction on a message.
func (m *Manager) ToggleReaction(ctx context.Context, messageID, emoji string) error {
	msg, err := m.rest.ToggleReaction(ctx, m.cfg.Room, messageID, emoji, m.cfg.Username)
	if err != nil {
		return err
	}
	m.applyUpdate(msg)
	return nil
}

// run is the connect/reconnect loop.
func (m *Manager) run() {
	defer m.wg.Done()

	attempt := 0
	for {
		if m.ctx.Err() != nil {
			return
		}

		m.setState(StateConnecting)
		messages, errs, err := m.transport.Connect(m.ctx)
		if err == nil {
			m.setState(StateConnected)
			attempt = 0
			m.stopFallback()

			err = m.consume(messages, errs)
			if m.ctx.Err() != nil {
				return
			}
			m.logger.Warn("push channel lost", "err", err)
		} else {
			if m.ctx.Err() != nil {
				return
			}
			m.logger.Warn("push connect failed", "err", err)
		}

		m.startFallback()

		attempt++
		if attempt > m.cfg.MaxReconnects {
			m.setState(StateDisconnected)
			m.logger.Warn("reconnect attempts exhausted, polling only",
				"attempts", m.cfg.MaxReconnects,
			)
			return
		}

		delay := backoffDelay(m.cfg.ReconnectBaseDelay, m.cfg.ReconnectMaxDelay, attempt)
		m.logger.Info("reconnecting", "attempt", attempt, "delay", delay)
		select {
		case <-m.ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// backoffDelay doubles per attempt from base, capped at max.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt > 30 {
		return max
	}
	d := base << uint(attempt)
	if d <= 0 || d > max {
		return max
	}
	return d
}

func (m *Manager) consume(messages <-chan []byte, errs <-chan error) error {
	for {
		select {
		case <-m.ctx.Done():
			return m.ctx.Err()
		case err := <-errs:
			return err
		case data, ok := <-messages:
			if !ok {
				select {
				case err := <-errs:
					return err
				case <-m.ctx.Done():
					return m.ctx.Err()
				}
			}
			m.dispatch(data)
		}
	}
}

// dispatch decodes one frame and folds it into the local view. Unknown
// tags are no-ops.
func (m *Manager) dispatch(data []byte) {
	ev, err := event.Decode(data)
	if err != nil {
		m.logger.Warn("undecodable frame", "err", err)
		return
	}

	switch ev.Type {
	case event.TypeConnected:
		m.mu.Lock()
		m.connectionID = ev.ConnectionID
		m.mu.Unlock()
		m.logger.Debug("handshake", "connection", ev.ConnectionID)
	case event.TypePing:
		// Liveness only.
	case event.TypeNewMessage:
		if ev.Message != nil {
			m.applyNew(*ev.Message)
			if ev.OnlineUsers != nil {
				m.setOnline(ev.OnlineUsers)
			}
		}
	case event.TypeReactionUpdate:
		if ev.Message != nil {
			m.applyUpdate(*ev.Message)
		}
	case event.TypeTypingUpdate:
		m.setTyping(ev.Typing)
	case event.TypeUserJoined, event.TypeUserLeft:
		m.setOnline(ev.OnlineUsers)
	}

	if m.onEvent != nil {
		m.onEvent(ev)
	}
}

// HandleSnapshot folds one fallback poll cycle into the local view.
// Messages go through the same id-dedup as push delivery; presence and
// typing are wholesale replacements.
func (m *Manager) HandleSnapshot(snap model.Snapshot, probe model.Probe) error {
	m.mergeMessages(snap.Messages)
	m.setOnline(probe.OnlineUsers)
	m.setTyping(probe.Typing)
	return nil
}

func (m *Manager) startFallback() {
	m.fallbackMu.Lock()
	defer m.fallbackMu.Unlock()
	if m.fallback != nil || m.ctx.Err() != nil {
		return
	}
	p := poller.New(poller.Config{
		Room:     m.cfg.Room,
		Interval: m.cfg.PollInterval,
	}, m.rest, m, m.logger)
	if err := p.Start(m.ctx); err != nil {
		m.logger.Warn("fallback start failed", "err", err)
		return
	}
	m.fallback = p
}

func (m *Manager) stopFallback() {
	m.fallbackMu.Lock()
	defer m.fallbackMu.Unlock()
	if m.fallback == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.fallback.Stop(ctx); err != nil {
		m.logger.Warn("fallback stop failed", "err", err)
	}
	m.fallback = nil
}

func (m *Manager) setState(s State) {
	old := State(m.state.Swap(int32(s)))
	if old != s && m.onStateChange != nil {
		m.onStateChange(s)
	}
}

func (m *Manager) applyNew(msg model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertLocked(msg)
}

func (m *Manager) applyUpdate(msg model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.index[msg.ID]; ok {
		m.messages[i] = msg
	}
}

func (m *Manager) mergeMessages(msgs []model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		m.insertLocked(msg)
	}
}

// insertLocked appends a message if its id is new, otherwise refreshes the
// stored copy. Callers hold m.mu.
func (m *Manager) insertLocked(msg model.Message) {
	if i, ok := m.index[msg.ID]; ok {
		m.messages[i] = msg
		return
	}
	m.index[msg.ID] = len(m.messages)
	m.messages = append(m.messages, msg)
}

func (m *Manager) removeMessage(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[id]
	if !ok {
		return
	}
	m.messages = append(m.messages[:i], m.messages[i+1:]...)
	delete(m.index, id)
	for j := i; j < len(m.messages); j++ {
		m.index[m.messages[j].ID] = j
	}
}

// setOnline replaces the online list wholesale; a nil payload means the
// room emptied out.
func (m *Manager) setOnline(users []string) {
	m.mu.Lock()
	m.online = append([]string{}, users...)
	m.mu.Unlock()
}

func (m *Manager) setTyping(users []string) {
	filtered := make([]string, 0, len(users))
	for _, u := range users {
		if u != m.cfg.Username {
			filtered = append(filtered, u)
		}
	}
	m.mu.Lock()
	m.typing = filtered
	m.mu.Unlock()
}
