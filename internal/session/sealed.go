package session

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"golang.org/x/crypto/chacha20poly1305"
	"time"
)

// sealedStore encrypts tokens with XChaCha20-Poly1305 before they reach the
// wrapped store. The storage key is bound as associated data, so a sealed
// token copied to another key does not open.
type sealedStore struct {
	Store
	aead cipher.AEAD
}

func Sealed(s Store, secret string) (Store, error) {
	key := sha256.Sum256([]byte("session-seal:" + secret))
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("session seal: %w", err)
	}
	return &sealedStore{Store: s, aead: aead}, nil
}

func (s *sealedStore) Save(ctx context.Context, key, token string, ttl time.Duration) error {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(token)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(token), []byte(key))
	return s.Store.Save(ctx, key, base64.RawURLEncoding.EncodeToString(sealed), ttl)
}

func (s *sealedStore) Load(ctx context.Context, key string) (string, error) {
	raw, err := s.Store.Load(ctx, key)
	if err != nil {
		return "", err
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil || len(data) < s.aead.NonceSize() {
		return "", ErrNotFound
	}
	nonce, box := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, box, []byte(key))
	if err != nil {
		return "", ErrNotFound
	}
	return string(plain), nil
}
