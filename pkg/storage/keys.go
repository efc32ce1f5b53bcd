package storage

import "fmt"

// Kind discriminates alert identifiers from schema identifiers. The two kinds
// occupy disjoint key namespaces even when identifiers overlap textually.
type Kind string

const (
	// KindAlert names a serialized alert packet in Confluent Wire Format,
	// gzip-compressed.
	KindAlert Kind = "alert"
	// KindSchema names a JSON-serialized Avro schema document.
	KindSchema Kind = "schema"
)

// Key prefixes and payload suffixes per kind. The suffixes match what the
// alert distribution pipeline writes into the archive.
const (
	alertKeyPrefix  = "alerts"
	schemaKeyPrefix = "schemas"
	alertKeySuffix  = ".avro.gz"
	schemaKeySuffix = ".json"
)

// ValidateID checks identifier syntax before any key is constructed. Allowed
// characters are ASCII letters, digits, and the separators '.', '_', ':', '-'.
// The identifier must be non-empty, must not begin with a separator, and must
// not contain a ".." sequence. This is the sole caller-facing defense against
// path traversal and key injection, so it is identical for every backend and
// performs no I/O.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidID)
	}
	if !isAlphanumeric(id[0]) {
		return fmt.Errorf("%w: identifier %q must start with a letter or digit", ErrInvalidID, id)
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if isAlphanumeric(c) {
			continue
		}
		switch c {
		case '.', '_', ':', '-':
			// Separators are fine, but ".." would escape a directory level
			// on the filesystem backend.
			if c == '.' && i+1 < len(id) && id[i+1] == '.' {
				return fmt.Errorf("%w: identifier %q contains %q", ErrInvalidID, id, "..")
			}
		default:
			return fmt.Errorf("%w: identifier %q contains disallowed character %q", ErrInvalidID, id, string(c))
		}
	}
	return nil
}

// ResolveKey maps a (kind, identifier) pair to the storage key the backends
// read from. It is pure: repeated calls with the same inputs always yield the
// same key. Object-store backends may prepend an internal archive prefix to
// the returned key; that partitioning detail is not part of the caller
// contract.
func ResolveKey(kind Kind, id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	switch kind {
	case KindAlert:
		return alertKeyPrefix + "/" + id + alertKeySuffix, nil
	case KindSchema:
		return schemaKeyPrefix + "/" + id + schemaKeySuffix, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidID, string(kind))
	}
}

func isAlphanumeric(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
