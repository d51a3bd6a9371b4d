package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"eseva-portal/pkg/logger"

	"github.com/rs/zerolog"
)

// PublicPrefix is the URL prefix under which permanent documents are served.
const PublicPrefix = "/uploads"

const tempDir = "temp"

var safeSegment = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ErrUnsafePath is returned when an identifier would escape the upload root.
var ErrUnsafePath = errors.New("unsafe path segment")

// ErrDocumentExists is returned instead of overwriting a stored document.
var ErrDocumentExists = errors.New("document already exists")

// LocalStaging implements ports.StagingArea on the local filesystem.
// Files live under {root}/temp/{orderID}/.
type LocalStaging struct {
	root string
	now  func() time.Time
	log  zerolog.Logger
}

// NewLocalStaging creates a staging area rooted at uploadDir.
func NewLocalStaging(uploadDir string, log zerolog.Logger) *LocalStaging {
	return &LocalStaging{
		root: uploadDir,
		now:  time.Now,
		log:  logger.Component(log, "staging"),
	}
}

// Stage writes r to {root}/temp/{orderID}/{orderID}_{field}_{unixMillis}{ext}
// and returns the absolute path. The order id stays in the name after
// promotion, so two orders never share a permanent file.
func (s *LocalStaging) Stage(orderID, field, filename string, r io.Reader) (string, error) {
	if !safeSegment.MatchString(orderID) || !safeSegment.MatchString(field) {
		return "", ErrUnsafePath
	}

	dir := filepath.Join(s.root, tempDir, orderID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	name := orderID + "_" + field + "_" + strconv.FormatInt(s.now().UnixMilli(), 10) + extension(filename)
	dst := filepath.Join(dir, name)
	if err := writeFile(dst, r); err != nil {
		return "", fmt.Errorf("stage %s: %w", field, err)
	}
	return dst, nil
}

// Discard removes everything staged for orderID. Missing directories are not an error.
func (s *LocalStaging) Discard(orderID string) error {
	if !safeSegment.MatchString(orderID) {
		return ErrUnsafePath
	}
	if err := os.RemoveAll(filepath.Join(s.root, tempDir, orderID)); err != nil {
		return fmt.Errorf("discard staging dir: %w", err)
	}
	return nil
}

// Sweep deletes order directories last modified before now-olderThan,
// skipping those keep reports as still live.
func (s *LocalStaging) Sweep(ctx context.Context, olderThan time.Duration, keep func(orderID string) bool) (int, error) {
	base := filepath.Join(s.root, tempDir)
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read staging root: %w", err)
	}

	cutoff := s.now().Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if keep != nil && keep(e.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(base, e.Name())); err != nil {
			s.log.Warn().Err(err).Str("order_id", e.Name()).Msg("Failed to remove orphaned staging dir")
			continue
		}
		removed++
	}
	return removed, nil
}

// LocalDocumentStore implements ports.DocumentStore on the local filesystem.
type LocalDocumentStore struct {
	root string
}

// NewLocalDocumentStore creates a document store rooted at uploadDir.
func NewLocalDocumentStore(uploadDir string) *LocalDocumentStore {
	return &LocalDocumentStore{root: uploadDir}
}

// Promote moves a staged file into {root}/{dir}/ keeping its name.
func (s *LocalDocumentStore) Promote(_ context.Context, tempPath, dir string) (string, error) {
	if !safeSegment.MatchString(dir) {
		return "", ErrUnsafePath
	}
	destDir := filepath.Join(s.root, dir)
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return "", fmt.Errorf("create document dir: %w", err)
	}

	name := filepath.Base(tempPath)
	dst := filepath.Join(destDir, name)
	if _, err := os.Lstat(dst); err == nil {
		return "", fmt.Errorf("promote %s: %w", name, ErrDocumentExists)
	}
	if err := os.Rename(tempPath, dst); err != nil {
		// Rename fails across devices; fall back to copy and remove.
		if cerr := copyFile(tempPath, dst); cerr != nil {
			return "", fmt.Errorf("promote %s: %w", name, errors.Join(err, cerr))
		}
		_ = os.Remove(tempPath)
	}
	return publicPath(dir, name), nil
}

// Save writes r to {root}/{dir}/{filename}.
func (s *LocalDocumentStore) Save(_ context.Context, dir, filename string, r io.Reader) (string, error) {
	if !safeSegment.MatchString(dir) {
		return "", ErrUnsafePath
	}
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return "", ErrUnsafePath
	}
	destDir := filepath.Join(s.root, dir)
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return "", fmt.Errorf("create document dir: %w", err)
	}
	if err := writeFile(filepath.Join(destDir, name), r); err != nil {
		if errors.Is(err, os.ErrExist) {
			err = ErrDocumentExists
		}
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return publicPath(dir, name), nil
}

// Remove deletes a document by its public path. Missing files are ignored.
func (s *LocalDocumentStore) Remove(_ context.Context, public string) error {
	rel, err := relativeFromPublic(public)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove document: %w", err)
	}
	return nil
}

func publicPath(dir, name string) string {
	return path.Join(PublicPrefix, dir, name)
}

// relativeFromPublic turns /uploads/{dir}/{name} into {dir}/{name}.
func relativeFromPublic(public string) (string, error) {
	rel, ok := strings.CutPrefix(path.Clean(public), PublicPrefix+"/")
	if !ok {
		return "", ErrUnsafePath
	}
	dir, name, ok := strings.Cut(rel, "/")
	if !ok || !safeSegment.MatchString(dir) || name == "" || strings.Contains(name, "/") {
		return "", ErrUnsafePath
	}
	return rel, nil
}

func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}

func writeFile(dst string, r io.Reader) error {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return err
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeFile(dst, in)
}
