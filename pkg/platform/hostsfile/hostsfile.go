// Package hostsfile manages autolocal entries in the local hosts file.
//
// Only lines carrying the "# autolocal" tag are managed; every other line is
// preserved byte for byte. Writes go through a temp file and an atomic rename
// so a crash cannot leave a half-written hosts file.
package hostsfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/funkpd/autolocal/pkg/utils/runlog"
)

const (
	// Tag marks lines owned by autolocal.
	Tag = "# autolocal"
	// LocalhostIP is the address every managed entry points at.
	LocalhostIP = "127.0.0.1"

	filePerm = 0o644
)

// Writer applies and removes tagged hosts-file entries keyed by domain.
type Writer struct {
	path string
	log  *runlog.Logger
}

// NewWriter creates a hosts-file writer for the given file.
func NewWriter(path string, log *runlog.Logger) *Writer {
	return &Writer{path: path, log: log}
}

// Apply ensures exactly one tagged line exists for the domain. Existing
// tagged lines for the domain are replaced, so re-running never duplicates.
func (w *Writer) Apply(domain string) error {
	lines, err := w.read()
	if err != nil {
		return err
	}

	desired := fmt.Sprintf("%s %s %s", LocalhostIP, domain, Tag)

	kept := make([]string, 0, len(lines)+1)
	replaced := false

	for _, line := range lines {
		if isManagedEntry(line, domain) {
			if line == desired && !replaced {
				kept = append(kept, line)
				replaced = true
			}

			// Stale or duplicate managed entry: drop it.
			continue
		}

		kept = append(kept, line)
	}

	if replaced {
		if len(kept) == len(lines) {
			w.log.Debugf("hosts entry unchanged: %s", domain)

			return nil
		}
	} else {
		kept = append(kept, desired)
	}

	err = w.writeAtomic(kept)
	if err != nil {
		return err
	}

	w.log.Debugf("hosts entry applied: %s", domain)

	return nil
}

// Remove deletes every tagged line for the domain. Absence is not an error.
func (w *Writer) Remove(domain string) error {
	lines, err := w.read()
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(lines))
	removed := 0

	for _, line := range lines {
		if isManagedEntry(line, domain) {
			removed++

			continue
		}

		kept = append(kept, line)
	}

	if removed == 0 {
		w.log.Debugf("hosts entry already absent: %s", domain)

		return nil
	}

	err = w.writeAtomic(kept)
	if err != nil {
		return err
	}

	w.log.Debugf("hosts entry removed: %s", domain)

	return nil
}

// Has reports whether a managed entry exists for the domain.
func (w *Writer) Has(domain string) bool {
	lines, err := w.read()
	if err != nil {
		return false
	}

	for _, line := range lines {
		if isManagedEntry(line, domain) {
			return true
		}
	}

	return false
}

func isManagedEntry(line, domain string) bool {
	return strings.Contains(line, Tag) && strings.Contains(line, domain)
}

func (w *Writer) read() ([]string, error) {
	content, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read hosts file %s: %w", w.path, err)
	}

	text := strings.TrimSuffix(string(content), "\n")
	if text == "" {
		return nil, nil
	}

	return strings.Split(text, "\n"), nil
}

func (w *Writer) writeAtomic(lines []string) error {
	dir := filepath.Dir(w.path)

	tmp, err := os.CreateTemp(dir, ".hosts-*")
	if err != nil {
		return fmt.Errorf("create temp hosts file: %w", err)
	}

	tmpPath := tmp.Name()

	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}

	_, err = tmp.WriteString(content)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("write temp hosts file: %w", err)
	}

	err = tmp.Sync()
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("sync temp hosts file: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("close temp hosts file: %w", err)
	}

	err = os.Chmod(tmpPath, filePerm)
	if err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("chmod temp hosts file: %w", err)
	}

	err = os.Rename(tmpPath, w.path)
	if err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("replace hosts file %s: %w", w.path, err)
	}

	return nil
}
