// Package pseudo implements deterministic, salted one-way tokenization of
// identifying values. Tokens support equality comparison and cross-call
// linkage; there is no inverse operation.
package pseudo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Namespace separates token spaces so a phone and an email that happen to
// normalize to the same string still tokenize differently.
type Namespace string

const (
	NamespacePhone Namespace = "phone"
	NamespaceEmail Namespace = "email"
	NamespaceName  Namespace = "name"
)

// Debug prefixes only; they carry no reversible information.
var prefixes = map[Namespace]string{
	NamespacePhone: "ph_",
	NamespaceEmail: "em_",
	NamespaceName:  "nm_",
}

const (
	tokenLen       = 12
	fingerprintLen = 16
)

// Engine computes tokens and fingerprints under one salt. The salt is
// injected at construction; two engines with the same salt are
// interchangeable, which is what makes cross-call linkage work.
type Engine struct {
	salt []byte
}

func New(salt string) *Engine {
	return &Engine{salt: []byte(salt)}
}

// Token maps a value to a short namespaced code. Equal normalized inputs
// always yield equal tokens for a fixed salt. Empty input yields "".
func (e *Engine) Token(value string, ns Namespace) string {
	norm := Normalize(value, ns)
	if norm == "" {
		return ""
	}
	return prefixes[ns] + e.mac(string(ns)+"\x1f"+norm)[:tokenLen]
}

// Fingerprint derives a cross-call identity code from whichever of phone,
// email, and name are present. When all three are absent it returns a
// locally-unique placeholder instead, so two unidentified callers are never
// merged into one identity.
func (e *Engine) Fingerprint(phone, email, name string) string {
	var parts []string
	if p := NormalizePhone(phone); p != "" {
		parts = append(parts, p)
	}
	if m := Normalize(email, NamespaceEmail); m != "" {
		parts = append(parts, m)
	}
	if n := Normalize(name, NamespaceName); n != "" {
		parts = append(parts, n)
	}
	if len(parts) == 0 {
		nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
		return "anon_" + nonce[:tokenLen]
	}
	return e.mac("fingerprint\x1f" + strings.Join(parts, "|"))[:fingerprintLen]
}

func (e *Engine) mac(msg string) string {
	h := hmac.New(sha256.New, e.salt)
	h.Write([]byte(msg))
	return hex.EncodeToString(h.Sum(nil))
}

// Normalize applies the namespace's canonical form: digits only for phones,
// lowercased and trimmed for everything else.
func Normalize(value string, ns Namespace) string {
	if ns == NamespacePhone {
		return NormalizePhone(value)
	}
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizePhone strips formatting down to bare digits and drops a leading
// country "1" from eleven-digit numbers, so "+1 (555) 123-4567" and
// "5551234567" normalize identically.
func NormalizePhone(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	return d
}
