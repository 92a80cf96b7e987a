package service

import "strings"

// maxRefNameBytes bounds the name part of a storage key so that id + "-" + name stays
// under the 255-byte filename limit of common filesystems.
const maxRefNameBytes = 200

// StorageReference derives the content store key for a file. It depends only on the
// file id and the name given at upload, so it can always be recomputed from a record.
func StorageReference(id, originalName string) string {
	name := sanitizeName(originalName)
	if len(name) > maxRefNameBytes {
		name = name[:maxRefNameBytes]
	}
	return id + "-" + name
}

// sanitizeName replaces every character outside [A-Za-z0-9._-] with '_'.
// The result is ASCII, so byte slicing it is safe.
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '_', c == '-':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
