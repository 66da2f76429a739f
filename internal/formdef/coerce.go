package formdef

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/spf13/afero"
)

// LocalFile is a file picked from disk. It satisfies stepform.File, so it is
// kept in memory for the session and never written to a snapshot.
type LocalFile struct {
	Path string
	size int64
}

func (f LocalFile) Name() string { return filepath.Base(f.Path) }
func (f LocalFile) Size() int64  { return f.size }

func (f LocalFile) String() string {
	return fmt.Sprintf("%s (%d bytes)", f.Name(), f.size)
}

// Coerce converts raw input text into the value stored under the field's
// name. Blank input becomes nil so "required" rules catch it. Bad input is
// returned as a rejection carrying a user-facing message.
func Coerce(fs afero.Fs, f Field, raw string) (any, error) {
	if f.Kind() != TypePassword {
		raw = strings.TrimSpace(raw)
	}
	if raw == "" {
		return nil, nil
	}

	switch f.Kind() {
	case TypeNumber:
		if n, err := strconv.Atoi(raw); err == nil {
			return n, nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, stepform.Reject("must be a number")
		}
		return n, nil

	case TypeSelect:
		if !slices.Contains(f.Options, raw) {
			return nil, stepform.Reject("must be one of " + strings.Join(f.Options, ", "))
		}
		return raw, nil

	case TypeFile:
		path := expandHome(raw)
		info, err := fs.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, stepform.Reject("file not found")
			}
			return nil, fmt.Errorf("checking %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, stepform.Reject("is a directory, pick a file")
		}
		return LocalFile{Path: path, size: info.Size()}, nil

	default:
		return raw, nil
	}
}

// Format renders a stored value back into input text.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case LocalFile:
		return val.Path
	case stepform.File:
		return val.Name()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Prefill coerces "name=value" assignments into form data, for values the
// caller knows before the form opens. Every name must be a field of d.
func (d *Definition) Prefill(fs afero.Fs, assignments []string) (stepform.Data, error) {
	fields := make(map[string]Field)
	for _, f := range d.Fields() {
		fields[f.Name] = f
	}

	out := stepform.Data{}
	var errs []error
	for _, a := range assignments {
		name, raw, ok := strings.Cut(a, "=")
		if !ok {
			errs = append(errs, fmt.Errorf("%q: expected name=value", a))
			continue
		}
		f, known := fields[strings.TrimSpace(name)]
		if !known {
			errs = append(errs, fmt.Errorf("%q: no such field", name))
			continue
		}
		v, err := Coerce(fs, f, raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		if v != nil {
			out[f.Name] = v
		}
	}
	return out, errors.Join(errs...)
}
