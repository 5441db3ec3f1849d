package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// Settings is the small slice of durable per-user state the dashboard keeps
// outside the remote platform: the active handle, the UI theme, and which
// contests the user marked as attended.
type Settings struct {
	Handle           string       `json:"handle"`
	Theme            string       `json:"theme"`
	AttendedContests map[int]bool `json:"attended_contests"`
}

// Store persists Settings as a JSON file. With an empty path it degrades to
// an in-memory store, which the tests and ephemeral deployments use.
type Store struct {
	mu       sync.Mutex
	path     string
	settings Settings
}

func NewStore(path string) (*Store, error) {
	store := &Store{
		path:     strings.TrimSpace(path),
		settings: Settings{AttendedContests: map[int]bool{}},
	}
	if store.path == "" {
		return store, nil
	}

	raw, err := os.ReadFile(store.path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, crerr.Wrap(err, "read settings file")
	}
	if len(raw) == 0 {
		return store, nil
	}
	if err := sonic.Unmarshal(raw, &store.settings); err != nil {
		return nil, crerr.Wrap(err, "decode settings file")
	}
	if store.settings.AttendedContests == nil {
		store.settings.AttendedContests = map[int]bool{}
	}
	return store, nil
}

func (s *Store) Get(_ context.Context) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) SetHandle(_ context.Context, handle string) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Handle = strings.TrimSpace(handle)
	if err := s.persist(); err != nil {
		return Settings{}, err
	}
	return s.snapshot(), nil
}

// ClearHandle removes the active handle, the logout path. Theme and
// attendance marks survive a logout.
func (s *Store) ClearHandle(ctx context.Context) (Settings, error) {
	return s.SetHandle(ctx, "")
}

func (s *Store) SetTheme(_ context.Context, theme string) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Theme = strings.TrimSpace(theme)
	if err := s.persist(); err != nil {
		return Settings{}, err
	}
	return s.snapshot(), nil
}

func (s *Store) SetContestAttendance(_ context.Context, contestID int, attended bool) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attended {
		s.settings.AttendedContests[contestID] = true
	} else {
		delete(s.settings.AttendedContests, contestID)
	}
	if err := s.persist(); err != nil {
		return Settings{}, err
	}
	return s.snapshot(), nil
}

func (s *Store) snapshot() Settings {
	out := s.settings
	out.AttendedContests = make(map[int]bool, len(s.settings.AttendedContests))
	for id, attended := range s.settings.AttendedContests {
		out.AttendedContests[id] = attended
	}
	return out
}

func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}

	raw, err := sonic.Marshal(s.settings)
	if err != nil {
		return crerr.Wrap(err, "encode settings")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return crerr.Wrap(err, "create settings directory")
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return crerr.Wrap(err, "write settings file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return crerr.Wrap(err, "replace settings file")
	}
	return nil
}
