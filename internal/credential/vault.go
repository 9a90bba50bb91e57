package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

// SecureStorage is the hardened storage area. It is deliberately separate
// from the bulk cache interface in package persist.
type SecureStorage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	DeleteItem(key string) error
}

const (
	saltSize         = 16
	kdfIterations    = 100_000
	masterKeyFile    = "master.key"
	sealedFileSuffix = ".sealed"
)

// Vault keeps each item in its own sealed file inside a private directory.
// Items are encrypted with XChaCha20-Poly1305 under a key derived from the
// master secret and a per-item salt.
type Vault struct {
	dir    string
	secret []byte
}

var _ SecureStorage = (*Vault)(nil)

// OpenVault prepares dir (mode 0700). When secret is empty a random master
// secret is generated once and kept in dir/master.key.
func OpenVault(dir string, secret []byte) (*Vault, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return nil, fmt.Errorf("restrict vault dir: %w", err)
	}
	if len(secret) == 0 {
		var err error
		secret, err = loadOrCreateMaster(filepath.Join(dir, masterKeyFile))
		if err != nil {
			return nil, err
		}
	}
	return &Vault{dir: dir, secret: secret}, nil
}

// GetItem returns the decrypted value stored under key.
func (v *Vault) GetItem(key string) (string, bool, error) {
	sealed, err := os.ReadFile(v.itemPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read item: %w", err)
	}
	plain, err := v.open(key, sealed)
	if err != nil {
		return "", false, err
	}
	return string(plain), true, nil
}

// SetItem encrypts value and replaces whatever was stored under key.
func (v *Vault) SetItem(key, value string) error {
	sealed, err := v.seal(key, []byte(value))
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(v.dir, ".item-*")
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(sealed); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write item: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write item: %w", err)
	}
	if err := os.Rename(tmp.Name(), v.itemPath(key)); err != nil {
		return fmt.Errorf("commit item: %w", err)
	}
	return nil
}

// DeleteItem removes key. A missing item is not an error.
func (v *Vault) DeleteItem(key string) error {
	if err := os.Remove(v.itemPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (v *Vault) itemPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(v.dir, hex.EncodeToString(sum[:])+sealedFileSuffix)
}

// seal lays out salt || nonce || ciphertext. The key name is bound as
// associated data so a file cannot be swapped for another item.
func (v *Vault) seal(key string, plain []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	aead, err := chacha20poly1305.NewX(v.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(plain)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plain, []byte(key)), nil
}

func (v *Vault) open(key string, sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("sealed item too short")
	}
	salt := sealed[:saltSize]
	nonce := sealed[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	ciphertext := sealed[saltSize+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(v.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("open item: %w", err)
	}
	return plain, nil
}

func (v *Vault) deriveKey(salt []byte) []byte {
	return pbkdf2.Key(v.secret, salt, kdfIterations, chacha20poly1305.KeySize, sha256.New)
}

func loadOrCreateMaster(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil && len(secret) > 0 {
		return secret, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read master key: %w", err)
	}

	secret = make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, fmt.Errorf("generate master key: %w", err)
	}
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write master key: %w", err)
	}
	return secret, nil
}
