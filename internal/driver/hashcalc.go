package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"slyc/internal/directive"
	"slyc/internal/source"
)

// Digest is a SHA-256 sum.
type Digest [32]byte

func sum(h hash.Hash) (d Digest) {
	h.Sum(d[:0])
	return d
}

// combineDigest = H(content || dep1 || dep2 ...); порядок deps важен.
func combineDigest(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	h.Write(content[:])
	for _, d := range deps {
		h.Write(d[:])
	}
	return sum(h)
}

// registryDigest identifies the directive set a program was compiled with.
// Bumping the cache schema changes it too.
func registryDigest(r *directive.Registry) Digest {
	h := sha256.New()
	h.Write(binary.BigEndian.AppendUint16(nil, diskCacheSchemaVersion))
	for _, name := range r.Names() {
		h.Write(append([]byte(name), 0))
	}
	return sum(h)
}

// cacheKey is the disk cache key of a template: its normalized content, its
// path and the directive set.
func cacheKey(file *source.File, r *directive.Registry) Digest {
	return combineDigest(Digest(file.Hash), sha256.Sum256([]byte(file.Path)), registryDigest(r))
}
