package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a stable UUID from key with go-hashid. Keys must carry a type
// prefix so different record kinds never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// SettingUUID identifies the site_settings row for a store key.
func SettingUUID(key string) uuid.UUID {
	return UUID("tapdev:setting:" + key)
}

// SeedUUID identifies a seeded collection record by table and slug, so
// reseeding is idempotent.
func SeedUUID(table, slug string) uuid.UUID {
	return UUID("tapdev:seed:" + strings.ToLower(strings.TrimSpace(table)) + ":" + strings.ToLower(strings.TrimSpace(slug)))
}
