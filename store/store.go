// Package store provides the blob stores holding the price cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/etnz/simbooks"
	"github.com/etnz/simbooks/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// File stores the blob in a single file.
type File struct {
	Path string
}

// Load returns the file content, or an empty blob when the file does not exist yet.
func (f *File) Load(context.Context) ([]byte, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read price cache %q: %w", f.Path, err)
	}
	return b, nil
}

// Save replaces the file content with blob. The file is written aside and
// renamed so that a reader never sees a partial blob.
func (f *File) Save(_ context.Context, blob []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create price cache directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot write price cache %q: %w", f.Path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write price cache %q: %w", f.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write price cache %q: %w", f.Path, err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("cannot write price cache %q: %w", f.Path, err)
	}
	return nil
}

// Redis stores the blob under a single key.
type Redis struct {
	Client *redis.Client
	Key    string
}

// Load returns the value of the key, or an empty blob when it is not set.
func (r *Redis) Load(ctx context.Context) ([]byte, error) {
	b, err := r.Client.Get(ctx, r.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price cache %q: %w", r.Key, err)
	}
	return b, nil
}

// Save sets the key to blob, without expiration.
func (r *Redis) Save(ctx context.Context, blob []byte) error {
	if err := r.Client.Set(ctx, r.Key, blob, 0).Err(); err != nil {
		return fmt.Errorf("failed to set price cache %q: %w", r.Key, err)
	}
	return nil
}

// Close closes the Redis client.
func (r *Redis) Close() error { return r.Client.Close() }

var (
	_ simbooks.BlobStore = (*File)(nil)
	_ simbooks.BlobStore = (*Redis)(nil)
)

// Open returns the blob store selected by cfg.Cache.Backend.
// The returned function releases the store resources.
func Open(cfg *config.Config, l *zap.Logger) (simbooks.BlobStore, func() error, error) {
	if l == nil {
		l = zap.NewNop()
	}
	switch cfg.Cache.Backend {
	case "", "file":
		l.Debug("price cache on file", zap.String("path", cfg.Cache.Path))
		return &File{Path: cfg.Cache.Path}, func() error { return nil }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		l.Debug("price cache on redis", zap.String("addr", cfg.Redis.Addr), zap.String("key", cfg.Redis.Key))
		s := &Redis{Client: client, Key: cfg.Redis.Key}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
