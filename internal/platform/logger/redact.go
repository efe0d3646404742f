package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

const redacted = "[REDACTED]"

type keyRule int

const (
	keepValue keyRule = iota
	dropValue
	maskEmail
	hashID
)

// redactor rewrites log fields before they reach zap. It is configured once
// from LOG_REDACTION_ENABLED and LOG_HASH_SALT.
type redactor struct {
	enabled bool
	salt    string
}

var (
	redactorOnce sync.Once
	active       redactor
)

func currentRedactor() redactor {
	redactorOnce.Do(func() {
		active = newRedactor(os.Getenv("LOG_REDACTION_ENABLED"), os.Getenv("LOG_HASH_SALT"))
	})
	return active
}

func newRedactor(enabled, salt string) redactor {
	r := redactor{enabled: true, salt: strings.TrimSpace(salt)}
	switch strings.ToLower(strings.TrimSpace(enabled)) {
	case "0", "false", "no", "off":
		r.enabled = false
	}
	return r
}

func sanitizeKVs(kv []interface{}) []interface{} {
	return currentRedactor().fields(kv)
}

func (r redactor) fields(kv []interface{}) []interface{} {
	if !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = r.value(ruleFor(fmt.Sprint(out[i])), out[i+1])
	}
	return out
}

func ruleFor(key string) keyRule {
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case k == "" || strings.HasSuffix(k, "_tokens"):
		return keepValue
	case k == "user_id" || k == "created_by" || k == "createdby":
		return hashID
	case strings.Contains(k, "email"):
		return maskEmail
	}
	for _, frag := range []string{"password", "token", "secret", "authorization", "api_key", "apikey"} {
		if strings.Contains(k, frag) {
			return dropValue
		}
	}
	return keepValue
}

func (r redactor) value(rule keyRule, v interface{}) interface{} {
	switch rule {
	case dropValue:
		return redacted
	case maskEmail:
		return maskAddress(fmt.Sprint(v))
	case hashID:
		return r.hash(fmt.Sprint(v))
	}
	switch t := v.(type) {
	case string:
		if looksLikeJWT(t) {
			return redacted
		}
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, inner := range t {
			m[k] = r.value(ruleFor(k), inner)
		}
		return m
	}
	return v
}

func (r redactor) hash(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + s))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

// maskAddress keeps the first letter and the domain: l***@example.com.
func maskAddress(s string) string {
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return redacted
	}
	return s[:1] + "***" + s[at:]
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && strings.HasPrefix(parts[0], "eyJ") && len(parts[1]) > 10 && parts[2] != ""
}
