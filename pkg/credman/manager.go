// Package credman stores API tokens encrypted at rest. The encryption key
// lives in the system keyring, with a file-based fallback for headless hosts.
package credman

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/postline/postline/pkg/credman/encryption"
)

// TokenName is the credential slot for the posting API token.
const TokenName = "late-api"

// KeyStore is the key provider surface shared by the system keyring and the
// file fallback.
type KeyStore interface {
	SetKey() ([]byte, error)
	GetKey() ([]byte, error)
	DeleteKey() error
}

// ResolveKey returns the stored encryption key, generating and persisting
// one on first use.
func ResolveKey(ks KeyStore) ([]byte, error) {
	key, err := ks.GetKey()
	if err == nil {
		return key, nil
	}
	return ks.SetKey()
}

// TokenManager holds named API tokens in a single encrypted credentials
// file. Values are sealed individually so the file itself stays opaque.
type TokenManager struct {
	filePath string
	key      []byte
	tokens   map[string][]byte
}

// NewTokenManager opens (or creates) the credentials file at filePath using
// the given 32-byte encryption key.
func NewTokenManager(filePath string, key []byte) (*TokenManager, error) {
	tm := &TokenManager{
		filePath: filePath,
		key:      key,
		tokens:   make(map[string][]byte),
	}
	if err := tm.loadTokens(); err != nil {
		return nil, err
	}
	return tm, nil
}

func (tm *TokenManager) loadTokens() error {
	data, err := os.ReadFile(tm.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 { // don't decode empty data
		return nil
	}
	dec := gob.NewDecoder(bytes.NewReader(data))
	return dec.Decode(&tm.tokens)
}

func (tm *TokenManager) saveTokens() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(tm.tokens); err != nil {
		return err
	}
	return os.WriteFile(tm.filePath, buf.Bytes(), 0600)
}

// SetToken seals and persists the named token.
func (tm *TokenManager) SetToken(name, value string) error {
	sealed, err := encryption.EncryptValue(value, tm.key)
	if err != nil {
		return err
	}
	tm.tokens[name] = sealed
	return tm.saveTokens()
}

// GetToken returns the named token in the clear.
func (tm *TokenManager) GetToken(name string) (string, error) {
	sealed, ok := tm.tokens[name]
	if !ok {
		return "", fmt.Errorf("token not found: %s", name)
	}
	value, err := encryption.DecryptValue(sealed, tm.key)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// HasToken reports whether the named token is stored.
func (tm *TokenManager) HasToken(name string) bool {
	_, ok := tm.tokens[name]
	return ok
}

// DeleteToken removes the named token from the file.
func (tm *TokenManager) DeleteToken(name string) error {
	if _, ok := tm.tokens[name]; !ok {
		return fmt.Errorf("token not found: %s", name)
	}
	delete(tm.tokens, name)
	return tm.saveTokens()
}
