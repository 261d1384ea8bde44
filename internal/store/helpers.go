package store

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// lowerArgs lowercases ss into []any for use with database/sql.
func lowerArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = strings.ToLower(s)
	}
	return args
}

// ContentHash returns the hex sha256 of content, the change-detection key
// stored with every sample.
func ContentHash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
