package keys

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// ContentKey normalises a catalogue path such as " Enemies.Evil Mask " to
// "enemies.evil_mask": trimmed, lower-cased, inner spaces as underscores.
func ContentKey(key string) string {
	parts := strings.Split(strings.TrimSpace(key), ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(strings.ToLower(p)), "_")
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

// Section returns the first path component ("players", "enemies", ...).
func Section(key string) string {
	k := ContentKey(key)
	section, _, _ := strings.Cut(k, ".")
	return section
}

// StatusKey is a stable key for a status definition: the normalised name plus
// a short hash of its rule text, e.g. "vulnerable_1f3a9c2e".
func StatusKey(name, rule string) string {
	n := strings.Join(strings.Fields(strings.ToLower(name)), "_")
	sum := sha1.Sum([]byte(strings.TrimSpace(rule)))
	return n + "_" + hex.EncodeToString(sum[:4])
}
