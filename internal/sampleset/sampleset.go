// Package sampleset reads pitch-indexed sample directories.
//
// A sample set is a directory whose files are named <pitch><ext>, where pitch
// is a MIDI-like semitone number (60 = middle C).
package sampleset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNoSamples         = errors.New("no source samples")
	ErrInvalidSampleName = errors.New("invalid sample filename")
)

// ScanOptions controls how a directory is turned into a Set.
type ScanOptions struct {
	// Extension of sample files, including the dot. Compared case-insensitively.
	Extension string
	// SkipInvalid records unparseable file names in Set.Skipped instead of
	// failing the scan.
	SkipInvalid bool
}

// Set is the list of pitches present in one sample directory.
type Set struct {
	Name    string
	Dir     string
	Skipped []string

	ext     string
	pitches []int
	files   map[int]string
}

// List returns the names of the sample set directories under root, sorted.
// Symlinks to directories count as sets. Hidden entries and plain files are
// ignored.
func List(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list sample root %s: %w", root, err)
	}

	var names []string
	for _, e := range entries {
		if isHidden(e.Name()) || !isDir(root, e) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Scan reads dir and parses every sample file name into a pitch.
func Scan(dir string, opts ScanOptions) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	set := &Set{
		Name:  filepath.Base(dir),
		Dir:   dir,
		ext:   opts.Extension,
		files: make(map[int]string),
	}

	for _, e := range entries {
		name := e.Name()
		if isHidden(name) || isDir(dir, e) {
			continue
		}

		pitch, err := ParseName(name, opts.Extension)
		if err != nil {
			if opts.SkipInvalid {
				set.Skipped = append(set.Skipped, name)
				continue
			}
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		if prev, dup := set.files[pitch]; dup {
			// 60.wav and 60.WAV on a case-sensitive filesystem
			if opts.SkipInvalid {
				set.Skipped = append(set.Skipped, name)
				continue
			}
			return nil, fmt.Errorf("scan %s: %w: %q duplicates pitch of %q", dir, ErrInvalidSampleName, name, prev)
		}

		set.files[pitch] = name
		set.pitches = append(set.pitches, pitch)
	}

	sort.Ints(set.pitches)
	return set, nil
}

// ParseName extracts the pitch from a file name such as "60.wav".
func ParseName(name, ext string) (int, error) {
	fileExt := filepath.Ext(name)
	if !strings.EqualFold(fileExt, ext) {
		return 0, fmt.Errorf("%w: %q (want <pitch>%s)", ErrInvalidSampleName, name, ext)
	}

	base := strings.TrimSuffix(name, fileExt)
	pitch, err := strconv.Atoi(base)
	// "060" and "+60" would alias 60.wav
	if err != nil || strconv.Itoa(pitch) != base {
		return 0, fmt.Errorf("%w: %q (want <pitch>%s)", ErrInvalidSampleName, name, ext)
	}
	return pitch, nil
}

// Pitches returns the present pitches in ascending order.
func (s *Set) Pitches() []int {
	out := make([]int, len(s.pitches))
	copy(out, s.pitches)
	return out
}

func (s *Set) Len() int {
	return len(s.pitches)
}

func (s *Set) Has(pitch int) bool {
	_, ok := s.files[pitch]
	return ok
}

// Path returns the file path of pitch: the existing file when present,
// otherwise the canonical <pitch><ext> name in the set directory.
func (s *Set) Path(pitch int) string {
	if name, ok := s.files[pitch]; ok {
		return filepath.Join(s.Dir, name)
	}
	return filepath.Join(s.Dir, strconv.Itoa(pitch)+s.ext)
}

// Gaps returns the pitches in [lo, hi) that have no sample.
func (s *Set) Gaps(lo, hi int) []int {
	var gaps []int
	for p := lo; p < hi; p++ {
		if !s.Has(p) {
			gaps = append(gaps, p)
		}
	}
	return gaps
}

// Nearest returns the present pitch closest to target. On equal distance the
// lower pitch wins, so results do not depend on directory listing order.
func (s *Set) Nearest(target int) (int, error) {
	if len(s.pitches) == 0 {
		return 0, fmt.Errorf("%w in %s", ErrNoSamples, s.Dir)
	}

	i := sort.SearchInts(s.pitches, target)
	switch {
	case i == 0:
		return s.pitches[0], nil
	case i == len(s.pitches):
		return s.pitches[i-1], nil
	}

	below, above := s.pitches[i-1], s.pitches[i]
	if above-target < target-below {
		return above, nil
	}
	return below, nil
}

// isDir reports whether e is a directory, following a symlink once.
// Dangling links are not directories.
func isDir(parent string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
