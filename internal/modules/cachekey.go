package modules

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CacheKey derives a deterministic fingerprint for one module invocation
// from the module id, its metadata version and the effective parameters.
// encoding/json serializes maps with sorted keys, so the key is insensitive
// to parameter ordering. An external caching layer uses the key to reuse
// results; this package never caches itself.
func CacheKey(id, version string, params map[string]any) string {
	canon, err := json.Marshal(params)
	if err != nil {
		// Unserializable parameter values fall back to the fmt rendering so
		// the key stays total; such params cannot round-trip through tool
		// arguments anyway.
		canon = []byte(fmt.Sprintf("%v", params))
	}

	h := sha256.New()
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write([]byte(version))
	h.Write([]byte{0})
	h.Write(canon)
	return hex.EncodeToString(h.Sum(nil))
}
