// Package storage provides a small JSON key-value store that survives
// restarts by mirroring itself to a pluggable persistence Medium.
//
// The Store keeps its state in memory and rewrites it as a single JSON
// object under one medium key on every mutation. A medium that fails its
// probe at construction (full, read-only, unreachable) leaves the store
// working in memory only; callers never see persistence errors.
//
// # Mediums
//
//   - storage/memory: in-process map, with failure injection for tests
//   - storage/local: one file per key on the local filesystem
//   - storage/redis: Redis via go-redis
//   - storage/encrypted: ChaCha20-Poly1305 wrapper for any medium
//
// # Configuration
//
// Backend selection and settings are provided via Config:
//
//	storage:
//	  backend: "redis"
//	  key: "app-storage"
//	  redis:
//	    addr: "localhost:6379"
//	    prefix: "restkit:"
package storage
