// ABOUTME: Sample loader resolving logical sample names to audio files
// ABOUTME: Probes registered extensions in a directory or fs.FS and decodes the first match
package decode

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

// Loader decodes the source audio for a sample name.
// A name is a file name without its extension.
type Loader struct {
	fsys     fs.FS
	registry *Registry
}

// NewLoader creates a loader over fsys. A nil registry uses DefaultRegistry.
func NewLoader(fsys fs.FS, registry *Registry) *Loader {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Loader{
		fsys:     fsys,
		registry: registry,
	}
}

// NewDirLoader creates a loader reading samples from dir
func NewDirLoader(dir string) *Loader {
	return NewLoader(os.DirFS(dir), nil)
}

// Load decodes the sample called name
func (l *Loader) Load(name string) (audio.Buffer, error) {
	file, dec, err := l.resolve(name)
	if err != nil {
		return audio.Buffer{}, err
	}

	f, err := l.fsys.Open(file)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}
	defer f.Close()

	buf, err := dec.Decode(f)
	if err != nil {
		if errors.Is(err, ErrMalformed) {
			return audio.Buffer{}, err
		}
		return audio.Buffer{}, malformed(path.Ext(file), err)
	}

	if buf.Format.Channels <= 0 || buf.Format.SampleRate <= 0 {
		return audio.Buffer{}, malformed(path.Ext(file), fmt.Errorf("invalid format %dHz %dch", buf.Format.SampleRate, buf.Format.Channels))
	}
	if buf.Frames() == 0 {
		return audio.Buffer{}, malformed(path.Ext(file), errors.New("no audio frames"))
	}

	log.Printf("Decoded sample %q from %s: %s %dHz %dch %d frames (%v)",
		name, file, buf.Format.Codec, buf.Format.SampleRate, buf.Format.Channels, buf.Frames(), buf.Duration())

	return buf, nil
}

// resolve finds the file backing name and its decoder
func (l *Loader) resolve(name string) (string, Decoder, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", nil, fmt.Errorf("%w: invalid sample name %q", ErrNotFound, name)
	}

	for _, ext := range l.registry.Extensions() {
		file := name + ext
		if !fs.ValidPath(file) {
			continue
		}
		if info, err := fs.Stat(l.fsys, file); err == nil && !info.IsDir() {
			dec, _ := l.registry.Get(ext)
			return file, dec, nil
		}
	}

	// Tolerate names that already carry a registered extension
	if dec, ok := l.registry.Get(path.Ext(name)); ok && path.Ext(name) != "" {
		if info, err := fs.Stat(l.fsys, name); err == nil && !info.IsDir() {
			return name, dec, nil
		}
	}

	return "", nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Names lists the sample names available to Load, sorted
func (l *Loader) Names() ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := path.Ext(entry.Name())
		if _, ok := l.registry.Get(ext); !ok || ext == "" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}
