package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/illarion/pwvault/internal/security"
)

const (
	folderSuffix = "Backup"
	// TimeLayout is the yyyyMMddHHmmss stamp embedded in snapshot names.
	TimeLayout = "20060102150405"
	// maxSameSecond bounds the -N suffixes tried when snapshots are taken
	// within one second.
	maxSameSecond = 100
)

// Error is returned when a snapshot could not be taken.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("could not back up %q: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Snapshot describes one backup file.
type Snapshot struct {
	Name string
	Path string
	Time time.Time
	Size int64
	// Seq is the -N suffix of snapshots taken within the same second
	Seq int
}

// Service copies container files into their backup folder.
type Service struct {
	now    func() time.Time
	logger zerolog.Logger
	keep   int
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger used for snapshot bookkeeping
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRetention keeps only the newest n snapshots after each backup.
// Zero keeps everything.
func WithRetention(n int) Option {
	return func(s *Service) {
		s.keep = n
	}
}

// New creates a backup service
func New(opts ...Option) *Service {
	s := &Service{
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Folder returns the backup folder of the container at path.
func Folder(path string) string {
	dir := filepath.Dir(path)
	return filepath.Join(dir, stem(path)+"_"+folderSuffix)
}

// FileName returns the snapshot file name for path taken at t.
func FileName(path string, t time.Time) string {
	return numberedName(path, t, 0)
}

// numberedName is FileName with a -seq suffix after the stamp. Seq 0 has
// no suffix.
func numberedName(path string, t time.Time, seq int) string {
	stamp := t.Format(TimeLayout)
	if seq > 0 {
		stamp += "-" + strconv.Itoa(seq)
	}
	return stem(path) + "_" + stamp + filepath.Ext(path)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Backup copies the file at path into its backup folder and returns the
// snapshot path. A missing source file is not an error; the returned path
// is empty in that case.
func (s *Service) Backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", &Error{Path: path, Err: err}
	}

	folder := Folder(path)
	if err := os.MkdirAll(folder, 0700); err != nil {
		return "", &Error{Path: path, Err: fmt.Errorf("failed to create backup folder: %w", err)}
	}

	pv, err := security.New(folder)
	if err != nil {
		return "", &Error{Path: path, Err: err}
	}
	defer pv.Close()

	name, err := createSnapshot(pv, path, s.now(), data)
	if err != nil {
		return "", &Error{Path: path, Err: fmt.Errorf("failed to write snapshot: %w", err)}
	}

	snapshot := filepath.Join(pv.Dir(), name)
	s.logger.Debug().Str("container", path).Str("snapshot", snapshot).Msg("backup created")

	if s.keep > 0 {
		if err := s.prune(pv, path); err != nil {
			s.logger.Warn().Err(err).Str("folder", folder).Msg("failed to prune backups")
		}
	}

	return snapshot, nil
}

// createSnapshot writes data under the first free name for t. Earlier
// snapshots from the same second are kept.
func createSnapshot(pv *security.PathValidator, path string, t time.Time, data []byte) (string, error) {
	for seq := 0; seq < maxSameSecond; seq++ {
		name := numberedName(path, t, seq)
		err := pv.CreateFileInRoot(name, data, 0600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		return name, nil
	}
	return "", fmt.Errorf("too many snapshots at %s", t.Format(TimeLayout))
}

// List returns the snapshots of the container at path, newest first.
// A missing backup folder yields an empty list.
func (s *Service) List(path string) ([]Snapshot, error) {
	folder := Folder(path)
	if _, err := os.Stat(folder); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	pv, err := security.New(folder)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	defer pv.Close()

	return listIn(pv, path)
}

func (s *Service) prune(pv *security.PathValidator, path string) error {
	snapshots, err := listIn(pv, path)
	if err != nil {
		return err
	}
	if len(snapshots) <= s.keep {
		return nil
	}

	var errs []error
	for _, snap := range snapshots[s.keep:] {
		if err := pv.RemoveInRoot(snap.Name); err != nil {
			errs = append(errs, err)
			continue
		}
		s.logger.Debug().Str("snapshot", snap.Path).Msg("old backup removed")
	}
	return errors.Join(errs...)
}

func listIn(pv *security.PathValidator, path string) ([]Snapshot, error) {
	entries, err := pv.ReadDirInRoot()
	if err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("failed to read backup folder: %w", err)}
	}

	prefix := stem(path) + "_"
	ext := filepath.Ext(path)

	var snapshots []Snapshot
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		t, seq, ok := parseName(entry.Name(), prefix, ext)
		if !ok {
			continue
		}
		info, err := pv.StatInRoot(entry.Name())
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Name: entry.Name(),
			Path: filepath.Join(pv.Dir(), entry.Name()),
			Time: t,
			Size: info.Size(),
			Seq:  seq,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if !snapshots[i].Time.Equal(snapshots[j].Time) {
			return snapshots[i].Time.After(snapshots[j].Time)
		}
		return snapshots[i].Seq > snapshots[j].Seq
	})
	return snapshots, nil
}

func parseName(name, prefix, ext string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)

	seq := 0
	if i := strings.IndexByte(stamp, '-'); i >= 0 {
		n, err := strconv.Atoi(stamp[i+1:])
		if err != nil || n < 1 {
			return time.Time{}, 0, false
		}
		stamp, seq = stamp[:i], n
	}

	if len(stamp) != len(TimeLayout) {
		return time.Time{}, 0, false
	}
	t, err := time.ParseInLocation(TimeLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return t, seq, true
}
