// Package vhost renders and removes nginx server-block files per domain.
package vhost

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/funkpd/autolocal/pkg/utils/runlog"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// defaultTemplate is the built-in server block. The single substitution point
// is {domain}; the document root follows from it.
const defaultTemplate = `server {
    listen 80;
    server_name {domain};
    root /srv/http/{domain};
    index index.php index.html;

    location / {
        try_files $uri $uri/ /index.php?$args;
    }

    location ~ \.php$ {
        include fastcgi_params;
        fastcgi_pass unix:/run/php-fpm/php-fpm.sock;
        fastcgi_param SCRIPT_FILENAME $document_root$fastcgi_script_name;
    }
}
`

// Writer renders vhost files into a directory, one file per domain.
type Writer struct {
	dir          string
	siteRoot     string
	templatePath string
	log          *runlog.Logger
}

// NewWriter creates a vhost writer. templatePath may be empty to use the
// built-in template.
func NewWriter(dir, siteRoot, templatePath string, log *runlog.Logger) *Writer {
	return &Writer{
		dir:          dir,
		siteRoot:     siteRoot,
		templatePath: templatePath,
		log:          log,
	}
}

// ConfPath returns the vhost file path for a domain.
func (w *Writer) ConfPath(domain string) string {
	return filepath.Join(w.dir, domain+".conf")
}

// Exists reports whether a vhost file already exists for the domain.
func (w *Writer) Exists(domain string) bool {
	_, err := os.Stat(w.ConfPath(domain))

	return err == nil
}

// Apply renders the template for the domain and writes the vhost file.
// Re-running with the same domain rewrites identical content, so the
// operation is idempotent: one domain, one file.
func (w *Writer) Apply(domain string) error {
	rendered, err := w.render(domain)
	if err != nil {
		return err
	}

	err = os.MkdirAll(w.dir, dirPerm)
	if err != nil {
		return fmt.Errorf("create vhost directory %s: %w", w.dir, err)
	}

	path := w.ConfPath(domain)

	existing, err := os.ReadFile(path)
	if err == nil && string(existing) == rendered {
		w.log.Debugf("vhost unchanged: %s", path)

		return nil
	}

	err = os.WriteFile(path, []byte(rendered), filePerm)
	if err != nil {
		return fmt.Errorf("write vhost %s: %w", path, err)
	}

	w.log.Debugf("vhost written: %s", path)

	return nil
}

// Remove deletes the domain's vhost file. A missing file is not an error.
func (w *Writer) Remove(domain string) error {
	path := w.ConfPath(domain)

	err := os.Remove(path)
	if err != nil {
		if os.IsNotExist(err) {
			w.log.Debugf("vhost already absent: %s", path)

			return nil
		}

		return fmt.Errorf("remove vhost %s: %w", path, err)
	}

	w.log.Debugf("vhost removed: %s", path)

	return nil
}

func (w *Writer) render(domain string) (string, error) {
	template := defaultTemplate

	if w.templatePath != "" {
		content, err := os.ReadFile(w.templatePath)
		if err != nil {
			return "", fmt.Errorf("read vhost template %s: %w", w.templatePath, err)
		}

		template = string(content)
	}

	rendered := strings.ReplaceAll(template, "{domain}", domain)

	// The built-in template hardcodes /srv/http; honor a custom site root.
	if w.templatePath == "" && w.siteRoot != "/srv/http" {
		rendered = strings.ReplaceAll(rendered, "/srv/http/"+domain, filepath.Join(w.siteRoot, domain))
	}

	return rendered, nil
}
