// Package verifier runs the post-provisioning verification pass. It is the
// final authority on a run's outcome: every expected page must exist and,
// when seeding is enabled, carry builder data and regenerated CSS.
package verifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/funkpd/autolocal/pkg/client/wpcli"
	"github.com/funkpd/autolocal/pkg/utils/notify"
	"github.com/funkpd/autolocal/pkg/utils/runlog"
)

// PageSpec names one expected page.
type PageSpec struct {
	Slug  string
	Title string
}

// Check is one verification finding.
type Check struct {
	// Name identifies the check, e.g. "page home" or "builder css".
	Name string
	// Passed reports whether the check held.
	Passed bool
	// Detail explains a failure or summarizes a pass.
	Detail string
	// PageID is set for page-level checks when the page was found.
	PageID int64
	// MetaSize is the builder data size in bytes for seeded-page checks.
	MetaSize int
}

// Report is the structured outcome of one verification pass.
type Report struct {
	Passed bool
	Checks []Check
}

// Verifier inspects a provisioned site.
type Verifier struct {
	wp       *wpcli.Client
	siteRoot string
	log      *runlog.Logger
	out      io.Writer
}

// New creates a verifier.
func New(wp *wpcli.Client, siteRoot string, log *runlog.Logger, out io.Writer) *Verifier {
	return &Verifier{wp: wp, siteRoot: siteRoot, log: log, out: out}
}

// Verify checks every expected page and, when seeding was enabled, the builder
// artifacts. Any failed check fails the report.
func (v *Verifier) Verify(ctx context.Context, domain string, pages []PageSpec, seedingEnabled bool) Report {
	report := Report{Passed: true}

	for _, page := range pages {
		check := v.checkPage(ctx, domain, page, seedingEnabled)
		report.Checks = append(report.Checks, check)

		if !check.Passed {
			report.Passed = false
		}
	}

	if seedingEnabled {
		check := v.checkBuilderCSS(domain)
		report.Checks = append(report.Checks, check)

		if !check.Passed {
			report.Passed = false
		}
	}

	v.summarize(domain, report)

	return report
}

// checkPage verifies one page exists and is published; with seeding, its
// builder data must also be non-empty.
func (v *Verifier) checkPage(ctx context.Context, domain string, page PageSpec, seedingEnabled bool) Check {
	check := Check{Name: "page " + page.Slug}

	res, err := v.wp.RunJSON(ctx, domain,
		"post", "list", "--post_type=page", "--name="+page.Slug, "--fields=ID,post_status")
	if err != nil {
		check.Detail = err.Error()

		return check
	}

	row, ok := res.FirstRow()
	if !res.Succeeded || !ok {
		check.Detail = "page not found"

		return check
	}

	id, ok := numericField(row, "ID")
	if !ok {
		check.Detail = "page id unreadable"

		return check
	}

	check.PageID = id

	status, _ := row["post_status"].(string)
	if status != "publish" {
		check.Detail = fmt.Sprintf("status %q, want publish", status)

		return check
	}

	if !seedingEnabled {
		check.Passed = true
		check.Detail = "published"

		return check
	}

	return v.checkBuilderData(ctx, domain, check)
}

func (v *Verifier) checkBuilderData(ctx context.Context, domain string, check Check) Check {
	res, err := v.wp.RunCapture(ctx, domain,
		"post", "meta", "get", strconv.FormatInt(check.PageID, 10), "_elementor_data")
	if err != nil {
		check.Detail = err.Error()

		return check
	}

	check.MetaSize = len(res.Value)

	if !res.Succeeded || check.MetaSize == 0 {
		check.Detail = "builder data empty"

		return check
	}

	check.Passed = true
	check.Detail = fmt.Sprintf("published, %d bytes builder data", check.MetaSize)

	return check
}

// checkBuilderCSS verifies the flush regenerated per-page CSS under the site's
// uploads directory.
func (v *Verifier) checkBuilderCSS(domain string) Check {
	check := Check{Name: "builder css"}

	cssDir := filepath.Join(v.siteRoot, domain, "wp-content", "uploads", "elementor", "css")

	entries, err := os.ReadDir(cssDir)
	if err != nil {
		check.Detail = fmt.Sprintf("css directory unreadable: %v", err)

		return check
	}

	if len(entries) == 0 {
		check.Detail = "css directory empty"

		return check
	}

	check.Passed = true
	check.Detail = fmt.Sprintf("%d css files", len(entries))

	return check
}

func (v *Verifier) summarize(domain string, report Report) {
	for _, check := range report.Checks {
		if check.Passed {
			v.log.Infof("verify %s: %s: %s", domain, check.Name, check.Detail)
			notify.Passf(v.out, v.log.RunID(), "verify %s", check.Name)
		} else {
			v.log.Errorf("verify %s: %s: %s", domain, check.Name, check.Detail)
			notify.Failf(v.out, v.log.RunID(), "verify %s: %s", check.Name, check.Detail)
		}
	}
}

func numericField(row map[string]any, key string) (int64, bool) {
	switch value := row[key].(type) {
	case float64:
		return int64(value), true
	case string:
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, false
		}

		return id, true
	default:
		return 0, false
	}
}
