package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// Field names are matched by substring after lowercasing.
var (
	secretKeys  = []string{"token", "authorization", "password", "senha", "secret", "cookie", "api_key", "apikey"}
	contactKeys = []string{"email", "whatsapp", "phone", "telefone", "celular", "cpf"}
	hashedKeys  = []string{"user_id", "usuario_id", "client_id"}
)

var (
	jwtPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]*$`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// Redactor scrubs structured log fields. A nil Redactor passes fields
// through unchanged.
type Redactor struct {
	salt string
}

func NewRedactor(salt string) *Redactor {
	return &Redactor{salt: strings.TrimSpace(salt)}
}

// Fields sanitizes a zap-style alternating key/value list.
func (r *Redactor) Fields(kv []interface{}) []interface{} {
	if r == nil || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := toString(kv[i])
		out = append(out, key, r.Value(strings.ToLower(strings.TrimSpace(key)), kv[i+1]))
	}
	return out
}

// Value sanitizes one field value given its lowercased key.
func (r *Redactor) Value(key string, val interface{}) interface{} {
	if r == nil {
		return val
	}
	switch {
	case containsAny(key, secretKeys), containsAny(key, contactKeys):
		return redacted
	case containsAny(key, hashedKeys):
		return r.hash(val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[k] = r.Value(strings.ToLower(strings.TrimSpace(k)), item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = r.Value("", item)
		}
		return out
	case string:
		if jwtPattern.MatchString(v) {
			return redacted
		}
		return emailPattern.ReplaceAllString(v, redacted)
	default:
		return val
	}
}

func (r *Redactor) hash(val interface{}) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	_, _ = h.Write([]byte(r.salt))
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

func containsAny(key string, needles []string) bool {
	if key == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(key, n) {
			return true
		}
	}
	return false
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
