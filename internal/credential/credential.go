// Package credential remembers at most one login credential in secure
// storage. Whether a credential exists is itself the "remember me" flag.
package credential

import (
	"encoding/json"
	"fmt"

	"github.com/golang/glog"
)

// StorageKey is the single secure-storage key holding the credential.
const StorageKey = "userinfo"

// Credential is a remembered username and password.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Store reads and writes the remembered credential.
type Store struct {
	storage SecureStorage
}

// NewStore wraps a secure storage backend.
func NewStore(storage SecureStorage) *Store {
	return &Store{storage: storage}
}

// Save remembers the pair, overwriting any previous value.
func (s *Store) Save(username, password string) error {
	encoded, err := json.Marshal(Credential{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	if err := s.storage.SetItem(StorageKey, string(encoded)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Clear forgets any remembered credential.
func (s *Store) Clear() error {
	if err := s.storage.DeleteItem(StorageKey); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Load returns the remembered credential. ok is false, with a nil error,
// when nothing has been saved.
func (s *Store) Load() (cred Credential, ok bool, err error) {
	raw, ok, err := s.storage.GetItem(StorageKey)
	if err != nil {
		return Credential{}, false, fmt.Errorf("load credential: %w", err)
	}
	if !ok || raw == "" || raw == "null" {
		return Credential{}, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return Credential{}, false, fmt.Errorf("decode credential: %w", err)
	}
	return cred, true, nil
}

// Remember applies the remember-me choice made at submit time: save when
// remember is set, clear otherwise. Failures are logged and never block the
// caller.
func (s *Store) Remember(remember bool, username, password string) {
	if remember {
		if err := s.Save(username, password); err != nil {
			glog.Warningf("could not save user info: %v", err)
		}
		return
	}
	if err := s.Clear(); err != nil {
		glog.Warningf("could not delete user info: %v", err)
	}
}
