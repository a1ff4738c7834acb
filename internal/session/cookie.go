package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Signer signs browser session ids for the session cookie.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte("session-cookie:" + secret)}
}

// Sign returns "sid.signature".
func (s *Signer) Sign(sid string) string {
	return sid + "." + s.mac(sid)
}

// Verify returns the session id of a signed cookie value.
func (s *Signer) Verify(value string) (string, bool) {
	i := strings.LastIndexByte(value, '.')
	if i <= 0 || i == len(value)-1 {
		return "", false
	}
	sid, sig := value[:i], value[i+1:]
	if !hmac.Equal([]byte(sig), []byte(s.mac(sid))) {
		return "", false
	}
	return sid, true
}

// FormToken returns the token forms posted by sid must carry.
func (s *Signer) FormToken(sid string) string {
	return s.mac("form:" + sid)
}

// CheckFormToken reports whether token belongs to sid.
func (s *Signer) CheckFormToken(sid, token string) bool {
	return token != "" && hmac.Equal([]byte(token), []byte(s.FormToken(sid)))
}

func (s *Signer) mac(sid string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(sid))
	return hex.EncodeToString(h.Sum(nil))
}
