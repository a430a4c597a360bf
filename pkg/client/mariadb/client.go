// Package mariadb manages per-site databases and users through the mariadb
// command line client.
package mariadb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/funkpd/autolocal/pkg/utils/runlog"
	"github.com/funkpd/autolocal/pkg/utils/runner"
)

// Client runs SQL statements via `mariadb -e`.
type Client struct {
	binary   string
	password string
	runner   runner.CommandRunner
	log      *runlog.Logger
}

// NewClient creates a MariaDB client. password is assigned to per-site users.
func NewClient(password string, cmdRunner runner.CommandRunner, log *runlog.Logger) *Client {
	return &Client{
		binary:   "mariadb",
		password: password,
		runner:   cmdRunner,
		log:      log,
	}
}

// Ident normalizes a domain into a database/user identifier: every
// non-alphanumeric rune becomes an underscore.
func Ident(domain string) string {
	var builder strings.Builder

	for _, r := range domain {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
		} else {
			builder.WriteRune('_')
		}
	}

	return builder.String()
}

// EnsureDatabaseAndUser creates the site database and user when absent and
// grants the user full privileges on the database. Safe to re-run.
func (c *Client) EnsureDatabaseAndUser(ctx context.Context, domain string) bool {
	ident := Ident(domain)

	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`;", ident),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'localhost' IDENTIFIED BY '%s';", ident, c.password),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO '%s'@'localhost';", ident, ident),
		"FLUSH PRIVILEGES;",
	}

	for _, sql := range statements {
		if !c.exec(ctx, sql) {
			return false
		}
	}

	return true
}

// Drop removes the site database and user. Safe to re-run.
func (c *Client) Drop(ctx context.Context, domain string) bool {
	ident := Ident(domain)

	dbOK := c.exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS `%s`;", ident))
	userOK := c.exec(ctx, fmt.Sprintf("DROP USER IF EXISTS '%s'@'localhost';", ident))

	return dbOK && userOK
}

// DatabaseExists reports whether the site database already exists.
func (c *Client) DatabaseExists(ctx context.Context, domain string) bool {
	ident := Ident(domain)
	sql := fmt.Sprintf(
		"SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME='%s';", ident)

	out, ok := c.query(ctx, sql)

	return ok && out != ""
}

// UserExists reports whether the site database user already exists.
func (c *Client) UserExists(ctx context.Context, domain string) bool {
	ident := Ident(domain)
	sql := fmt.Sprintf("SELECT 1 FROM mysql.user WHERE user='%s' AND host='localhost';", ident)

	out, ok := c.query(ctx, sql)

	return ok && out != ""
}

func (c *Client) exec(ctx context.Context, sql string) bool {
	_, ok := c.query(ctx, sql)

	return ok
}

func (c *Client) query(ctx context.Context, sql string) (string, bool) {
	started := time.Now()

	res, err := c.runner.Run(ctx, runner.Command{
		Name: c.binary,
		Args: []string{"-e", sql},
	})
	if err != nil {
		c.log.Errorf("exec %s -e %q: %v", c.binary, sql, err)

		return "", false
	}

	c.log.Command([]string{c.binary, "-e", sql}, res.ExitCode, time.Since(started), res.Stdout, res.Stderr)

	if res.ExitCode != 0 {
		return strings.TrimSpace(res.Stdout), false
	}

	return strings.TrimSpace(res.Stdout), true
}
