// Package prefs persists the display preferences and tells subscribers when
// the effective theme changes.
package prefs

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Keys are stored as bare strings, not JSON.
const (
	KeyThemeMode   = "themeMode"
	KeyColorScheme = "colorScheme"
)

// Defaults applied when nothing valid is stored.
var Defaults = core.Preferences{ThemeMode: core.ThemeSystem, ColorScheme: core.SchemeBlue}

// State is what a renderer needs: the stored preferences and the resolved
// dark flag.
type State struct {
	core.Preferences
	Dark bool `json:"dark"`
}

type Listener func(State)

type Store struct {
	mu         sync.Mutex
	kv         storage.KV
	logger     *log.Logger
	prefs      core.Preferences
	systemDark bool
	listeners  map[int]Listener
	nextID     int
}

// IsDark resolves a mode against the host's current system preference.
func IsDark(mode core.ThemeMode, systemDark bool) bool {
	switch mode {
	case core.ThemeDark:
		return true
	case core.ThemeSystem:
		return systemDark
	default:
		return false
	}
}

// Open reads both keys; missing or unrecognised values fall back to Defaults.
func Open(ctx context.Context, kv storage.KV, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Store{
		kv:        kv,
		logger:    logger.WithComponent(log.ComponentPrefs),
		prefs:     Defaults,
		listeners: map[int]Listener{},
	}

	raw, found, err := kv.Get(ctx, KeyThemeMode)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyThemeMode, err)
	}
	if mode := core.ThemeMode(raw); found && mode.Valid() {
		s.prefs.ThemeMode = mode
	} else if found {
		s.logger.Warn("Ignoring stored theme mode", log.FieldKey, KeyThemeMode, "value", string(raw))
	}

	raw, found, err = kv.Get(ctx, KeyColorScheme)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyColorScheme, err)
	}
	if scheme := core.ColorScheme(raw); found && scheme.Valid() {
		s.prefs.ColorScheme = scheme
	} else if found {
		s.logger.Warn("Ignoring stored color scheme", log.FieldKey, KeyColorScheme, "value", string(raw))
	}
	return s, nil
}

func (s *Store) Get() core.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	return State{Preferences: s.prefs, Dark: IsDark(s.prefs.ThemeMode, s.systemDark)}
}

func (s *Store) SetThemeMode(ctx context.Context, mode core.ThemeMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidTheme, mode)
	}
	return s.apply(ctx, KeyThemeMode, string(mode), func(p *core.Preferences) { p.ThemeMode = mode })
}

func (s *Store) SetColorScheme(ctx context.Context, scheme core.ColorScheme) error {
	if !scheme.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidScheme, scheme)
	}
	return s.apply(ctx, KeyColorScheme, string(scheme), func(p *core.Preferences) { p.ColorScheme = scheme })
}

// Toggle switches light to dark and anything else to light.
func (s *Store) Toggle(ctx context.Context) (core.ThemeMode, error) {
	var next core.ThemeMode
	err := s.applyWith(ctx, KeyThemeMode, func(p core.Preferences) (string, func(*core.Preferences)) {
		next = core.ThemeLight
		if p.ThemeMode == core.ThemeLight {
			next = core.ThemeDark
		}
		return string(next), func(p *core.Preferences) { p.ThemeMode = next }
	})
	if err != nil {
		return "", err
	}
	return next, nil
}

// SetSystemDark records the host's system preference. Subscribers hear about
// it only when the resolved theme changes.
func (s *Store) SetSystemDark(dark bool) {
	s.mu.Lock()
	before := s.stateLocked()
	s.systemDark = dark
	after := s.stateLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	if before.Dark != after.Dark {
		for _, l := range listeners {
			l(after)
		}
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) listenersLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if l, ok := s.listeners[i]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store) apply(ctx context.Context, key, value string, set func(*core.Preferences)) error {
	return s.applyWith(ctx, key, func(core.Preferences) (string, func(*core.Preferences)) { return value, set })
}

// applyWith derives the stored value from the current preferences while
// holding the lock, so read-modify-write callers cannot interleave.
func (s *Store) applyWith(ctx context.Context, key string, derive func(core.Preferences) (string, func(*core.Preferences))) error {
	s.mu.Lock()
	value, set := derive(s.prefs)
	if err := s.kv.Set(ctx, key, []byte(value)); err != nil {
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "Failed to persist preference", log.FieldKey, key, log.FieldError, err)
		return fmt.Errorf("save %s: %w", key, err)
	}
	set(&s.prefs)
	state := s.stateLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Preference updated", log.FieldKey, key, "value", value)
	for _, l := range listeners {
		l(state)
	}
	return nil
}
