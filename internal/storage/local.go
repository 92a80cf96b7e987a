package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// localStorage keeps blobs as flat files in one directory.
// Writes go to a temp file that is fsynced and renamed into place, so a reader
// never observes a partially written blob.
type localStorage struct {
	dir string
}

// NewLocal creates a directory-backed content store, creating dir if needed.
func NewLocal(dir string) (Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("local storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &localStorage{dir: dir}, nil
}

func (l *localStorage) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(l.dir, key), nil
}

func (l *localStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	full, err := l.path(key)
	if err != nil {
		return ObjectInfo{}, err
	}

	// Temp names start with a dot so they can never collide with a valid key.
	f, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	fail := func(err error) (ObjectInfo, error) {
		f.Close()
		os.Remove(tmp)
		return ObjectInfo{}, err
	}

	size, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		return fail(fmt.Errorf("write data: %w", err))
	}
	if err := f.Sync(); err != nil {
		return fail(fmt.Errorf("fsync: %w", err))
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return ObjectInfo{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return ObjectInfo{}, fmt.Errorf("commit blob: %w", err)
	}

	st, err := os.Stat(full)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat blob: %w", err)
	}
	return ObjectInfo{
		Key:          key,
		Size:         size,
		ContentType:  opt.ContentType,
		LastModified: st.ModTime(),
		Metadata:     opt.Metadata,
	}, nil
}

func (l *localStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	full, err := l.path(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("open blob %s: %w", key, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat blob %s: %w", key, err)
	}
	return f, ObjectInfo{Key: key, Size: st.Size(), LastModified: st.ModTime()}, nil
}

func (l *localStorage) Delete(ctx context.Context, key string) error {
	full, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// ctxReader stops a copy once the request context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
