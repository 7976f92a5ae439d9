// Package blobstore stores uploaded binary files such as diet PDFs on disk.
package blobstore

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/myrjola/fitweek/internal/errors"
)

var (
	ErrNotFound   = errors.NewSentinel("blob not found")
	ErrInvalidKey = errors.NewSentinel("invalid blob key")
)

// Disk keeps blobs as files below a root directory. Keys are slash separated relative paths.
type Disk struct {
	root    string
	baseURL string
	logger  *slog.Logger
}

// NewDisk creates the root directory when needed. Blob URLs are baseURL joined with the key, or file URLs when
// baseURL is empty.
func NewDisk(root string, baseURL string, logger *slog.Logger) (*Disk, error) {
	if root == "" {
		return nil, errors.New("blob root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve blob root", slog.String("root", root))
	}
	if err = os.MkdirAll(abs, 0o750); err != nil {
		return nil, errors.Wrap(err, "create blob root", slog.String("root", abs))
	}
	return &Disk{
		root:    abs,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Put writes r to key replacing an existing blob and returns the blob URL. The blob becomes visible only once it has
// been fully written.
func (d *Disk) Put(ctx context.Context, key string, r io.Reader) (_ string, err error) {
	target, err := d.pathOf(key)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", errors.Wrap(err, "create blob directory", slog.String("key", key))
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", errors.Wrap(err, "create temporary blob", slog.String("key", key))
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	written, err := io.Copy(tmp, contextReader{ctx: ctx, r: r})
	if err != nil {
		return "", errors.Join(errors.Wrap(err, "write blob", slog.String("key", key)), tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return "", errors.Wrap(err, "close blob", slog.String("key", key))
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return "", errors.Wrap(err, "move blob in place", slog.String("key", key))
	}

	d.logger.LogAttrs(ctx, slog.LevelDebug, "stored blob", slog.String("key", key), slog.Int64("bytes", written))
	return d.URL(key), nil
}

// Open returns a reader for the blob at key or [ErrNotFound].
func (d *Disk) Open(_ context.Context, key string) (io.ReadCloser, error) {
	target, err := d.pathOf(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "open blob", slog.String("key", key))
	}
	return f, nil
}

// Delete removes the blob at key. Deleting a missing blob is not an error.
func (d *Disk) Delete(_ context.Context, key string) error {
	target, err := d.pathOf(key)
	if err != nil {
		return err
	}
	if err = os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "delete blob", slog.String("key", key))
	}
	return nil
}

// URL returns the public URL of key.
func (d *Disk) URL(key string) string {
	if d.baseURL != "" {
		return d.baseURL + "/" + key
	}
	fileURL := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(d.root, filepath.FromSlash(key)))} //nolint:exhaustruct,lll // scheme and path.
	return fileURL.String()
}

func (d *Disk) pathOf(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "..") {
		return "", errors.Wrap(ErrInvalidKey, "resolve blob", slog.String("key", key))
	}
	return filepath.Join(d.root, filepath.FromSlash(key)), nil
}

type contextReader struct {
	ctx context.Context //nolint:containedctx // checked between reads of a single upload.
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err //nolint:wrapcheck // returned as is to io.Copy.
	}
	return c.r.Read(p) //nolint:wrapcheck // io.Reader contract.
}
