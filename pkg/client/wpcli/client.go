// Package wpcli wraps the wp-cli binary behind structured results.
//
// Every invocation is scoped to a site's document root, silenced with
// --quiet, and logged to the durable run log with its literal argv, exit
// status and truncated output. Ordinary command failure is reported through
// Result.Succeeded, never as an error; errors are reserved for malformed
// arguments.
package wpcli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/funkpd/autolocal/pkg/utils/runlog"
	"github.com/funkpd/autolocal/pkg/utils/runner"
)

// DefaultTimeout bounds a single wp-cli invocation. Core downloads on a cold
// cache are the slow case.
const DefaultTimeout = 10 * time.Minute

// ErrEmptyCommand is returned when an invocation has no arguments. This is a
// programmer error, not a command failure.
var ErrEmptyCommand = errors.New("wp-cli invocation requires at least one argument")

// webUser is the account owning site files; invocations run as it when the
// current process is a different user.
const webUser = "http"

type mode int

const (
	// modeQuiet runs the command for its side effect only.
	modeQuiet mode = iota
	// modeJSON appends --format=json and parses the payload.
	modeJSON
	// modePorcelain treats the trimmed last stdout line as the payload.
	modePorcelain
	// modeCapture treats the full trimmed stdout as the payload.
	modeCapture
)

// Client executes wp-cli commands against site document roots.
type Client struct {
	wpPath   string
	siteRoot string
	timeout  time.Duration
	runner   runner.CommandRunner
	log      *runlog.Logger
	sudoUser string
}

// NewClient creates a wp-cli client. The runner is injectable for tests.
func NewClient(wpPath, siteRoot string, cmdRunner runner.CommandRunner, log *runlog.Logger) *Client {
	return &Client{
		wpPath:   wpPath,
		siteRoot: siteRoot,
		timeout:  DefaultTimeout,
		runner:   cmdRunner,
		log:      log,
		sudoUser: detectSudoUser(),
	}
}

// WithTimeout overrides the per-invocation timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout

	return c
}

// SitePath returns the document root for a domain.
func (c *Client) SitePath(domain string) string {
	return filepath.Join(c.siteRoot, domain)
}

// Run executes a command for its side effect. The payload stays empty.
func (c *Client) Run(ctx context.Context, domain string, args ...string) (Result, error) {
	return c.run(ctx, c.SitePath(domain), nil, modeQuiet, args)
}

// RunJSON executes a command with --format=json and parses the payload.
// Arrays land in Result.Rows, objects in Result.Fields, scalars in
// Result.Value.
func (c *Client) RunJSON(ctx context.Context, domain string, args ...string) (Result, error) {
	return c.run(ctx, c.SitePath(domain), nil, modeJSON, args)
}

// RunPorcelain executes a command whose output is a single plain value (for
// example an id from --porcelain). The trimmed last stdout line becomes
// Result.Value.
func (c *Client) RunPorcelain(ctx context.Context, domain string, args ...string) (Result, error) {
	return c.run(ctx, c.SitePath(domain), nil, modePorcelain, args)
}

// RunCapture executes a command and exposes the full trimmed stdout as
// Result.Value. Used for large text payloads such as builder data blobs.
func (c *Client) RunCapture(ctx context.Context, domain string, args ...string) (Result, error) {
	return c.run(ctx, c.SitePath(domain), nil, modeCapture, args)
}

// RunWithStdin executes a command with its standard input connected to r.
// wp-cli reads omitted values from STDIN, which keeps large blobs off the
// command line.
func (c *Client) RunWithStdin(ctx context.Context, domain string, r io.Reader, args ...string) (Result, error) {
	return c.run(ctx, c.SitePath(domain), r, modeQuiet, args)
}

// RunJSONAtPath is RunJSON against an explicit document root, such as the
// vault site.
func (c *Client) RunJSONAtPath(ctx context.Context, path string, args ...string) (Result, error) {
	return c.run(ctx, path, nil, modeJSON, args)
}

// RunCaptureAtPath is RunCapture against an explicit document root.
func (c *Client) RunCaptureAtPath(ctx context.Context, path string, args ...string) (Result, error) {
	return c.run(ctx, path, nil, modeCapture, args)
}

func (c *Client) run(ctx context.Context, sitePath string, stdin io.Reader, runMode mode, args []string) (Result, error) {
	if len(args) == 0 {
		return emptyResult(), ErrEmptyCommand
	}

	argv := slices.Clone(args)
	argv = append(argv, "--path="+sitePath)

	if runMode == modeJSON && !hasFlag(argv, "--format") {
		argv = append(argv, "--format=json")
	}

	if !hasFlag(argv, "--quiet") {
		argv = append(argv, "--quiet")
	}

	name := c.wpPath
	if c.sudoUser != "" {
		argv = append([]string{"-u", c.sudoUser, c.wpPath}, argv...)
		name = "sudo"
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()

	res, err := c.runner.Run(runCtx, runner.Command{
		Name:  name,
		Args:  argv,
		Env:   []string{"WP_CLI_DISABLE_AUTO_CHECK_UPDATE=1"},
		Stdin: stdin,
	})
	elapsed := time.Since(started)

	fullArgv := append([]string{name}, argv...)

	if err != nil {
		// The command never ran to completion; report it like a failure.
		c.log.Errorf("exec %v: %v", fullArgv, err)

		return emptyResult(), nil
	}

	c.log.Command(fullArgv, res.ExitCode, elapsed, res.Stdout, res.Stderr)

	result := emptyResult()
	result.Stdout = res.Stdout
	result.Stderr = res.Stderr

	if res.ExitCode != 0 {
		return result, nil
	}

	result.Succeeded = true

	switch runMode {
	case modeQuiet:
	case modeJSON:
		c.decodeJSONPayload(&result, fullArgv)
	case modePorcelain:
		result.Value = lastLine(res.Stdout)
		if result.Value == "" {
			// A payload was expected; empty output is a failure.
			result.Succeeded = false
		}
	case modeCapture:
		result.Value = strings.TrimSpace(res.Stdout)
	}

	return result, nil
}

// decodeJSONPayload parses the stdout of a successful JSON-mode command into
// the result. Unparseable output where a payload was expected demotes the
// result to failed; callers must be able to trust the containers.
func (c *Client) decodeJSONPayload(result *Result, argv []string) {
	value, ok := parseRelaxed(result.Stdout)
	if !ok {
		c.log.Warnf("exec %v: no JSON payload in output", argv)

		result.Succeeded = false

		return
	}

	switch typed := value.(type) {
	case []any:
		for _, element := range typed {
			row, isMap := element.(map[string]any)
			if isMap {
				result.Rows = append(result.Rows, row)
			}
		}
	case map[string]any:
		result.Fields = typed
	case string:
		result.Value = strings.TrimSpace(typed)
	case float64:
		result.Value = strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		c.log.Warnf("exec %v: unexpected JSON payload type %T", argv, value)

		result.Succeeded = false
	}
}

func hasFlag(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag || strings.HasPrefix(arg, flag+"=") {
			return true
		}
	}

	return false
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")

	return strings.TrimSpace(lines[len(lines)-1])
}

// detectSudoUser returns the web user to impersonate, or "" when the process
// already runs as it (or the account does not exist, e.g. in CI).
func detectSudoUser() string {
	account, err := user.Lookup(webUser)
	if err != nil {
		return ""
	}

	uid, err := strconv.Atoi(account.Uid)
	if err != nil || uid <= 0 {
		return ""
	}

	if os.Geteuid() == uid {
		return ""
	}

	return webUser
}
