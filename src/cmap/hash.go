package cmap

import "github.com/cespare/xxhash/v2"

// StringHasher hashes a string key with xxhash, for use as the hasher
// argument to New when K is string.
func StringHasher(key string) uint64 {
	return xxhash.Sum64String(key)
}
