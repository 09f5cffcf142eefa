// Package session manages editing sessions. Each session owns one entry
// state machine and one recent-input buffer for a single text field, so
// independent fields never share editing context.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"entrytrack/internal/config"
	"entrytrack/internal/diag"
	"entrytrack/internal/entry"
	"entrytrack/internal/logging"
	"entrytrack/internal/recent"
)

// Options identifies the text field a session tracks.
type Options struct {
	// AppID identifies the application (bundle ID, package name, etc.)
	AppID string

	// FieldID identifies the document or text field within the application.
	FieldID string
}

// Validate checks that the session options are usable.
func (o Options) Validate() error {
	if o.AppID == "" {
		return errors.New("AppID is required")
	}
	if o.FieldID == "" {
		return errors.New("FieldID is required")
	}
	return nil
}

// Session is the editing context of one text field.
type Session struct {
	ID        string
	AppID     string
	FieldID   string
	StartedAt time.Time

	// Machine is the entry state machine for this field. All events for the
	// field must be reported from a single logical caller.
	Machine *entry.Machine

	// Recent is the rolling buffer of this field's recent keystrokes.
	Recent *recent.Buffer
}

// Manager creates and tracks sessions. The manager map is safe for
// concurrent use; individual sessions are not.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cfg  *config.Config
	sink diag.Sink
	log  *logging.Logger

	// baseLog is the unscoped logger handed to each session's machine.
	baseLog *logging.Logger
}

// NewManager creates a session manager. cfg nil means defaults; sink nil
// discards diagnostics.
func NewManager(cfg *config.Config, sink diag.Sink, log *logging.Logger) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if sink == nil {
		sink = diag.NopSink{}
	}
	if log == nil {
		log = logging.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		sink:     sink,
		log:      log.WithComponent("session"),
		baseLog:  log,
	}
}

// SetConfig replaces the configuration used for sessions created from now
// on. Existing sessions keep the settings they were created with.
func (m *Manager) SetConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

// Begin creates a session for the given field. It fails if one already
// exists; call End first to abandon the old context.
func (m *Manager) Begin(opts Options) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := sessionKey(opts.AppID, opts.FieldID)
	if _, exists := m.sessions[k]; exists {
		return nil, fmt.Errorf("session already active for %s/%s", opts.AppID, opts.FieldID)
	}

	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	buf := recent.NewBuffer(m.cfg.Recent.Capacity)
	machine := entry.NewMachine(entry.Options{
		Recorder: buf,
		Sink:     m.sink,
		Verbose:  m.cfg.Diagnostics.Verbose,
		Log:      m.baseLog,
	})

	s := &Session{
		ID:        id,
		AppID:     opts.AppID,
		FieldID:   opts.FieldID,
		StartedAt: time.Now(),
		Machine:   machine,
		Recent:    buf,
	}
	m.sessions[k] = s

	m.log.Debug("session started", "id", id, "app", opts.AppID, "field", opts.FieldID)
	return s, nil
}

// Get returns the session for the given field, or nil if none exists.
func (m *Manager) Get(appID, fieldID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionKey(appID, fieldID)]
}

// End removes the session for the given field. Returns an error if no
// session exists.
func (m *Manager) End(appID, fieldID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := sessionKey(appID, fieldID)
	s, ok := m.sessions[k]
	if !ok {
		return fmt.Errorf("no session for %s/%s", appID, fieldID)
	}
	delete(m.sessions, k)

	m.log.Debug("session ended", "id", s.ID, "app", appID, "field", fieldID)
	return nil
}

// Active returns the IDs of all active sessions, sorted.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for _, s := range m.sessions {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	return ids
}

func sessionKey(appID, fieldID string) string {
	return appID + "\x00" + fieldID
}

// generateSessionID creates a unique session identifier.
func generateSessionID() (string, error) {
	var randBytes [4]byte
	if _, err := rand.Read(randBytes[:]); err != nil {
		return "", err
	}
	return time.Now().Format("20060102-150405") + "-" + hex.EncodeToString(randBytes[:]), nil
}
