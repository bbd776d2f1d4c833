// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// ErrNoPassword is returned when no pgpass entry matches a role.
var ErrNoPassword = errors.New("no matching password entry")

// pgpassEntry is one hostname:port:database:username:password line of
// a pgpass file. The first four fields may be * which matches anything.
type pgpassEntry struct {
	host, port, db, user, pass string
}

// parsePgpassLine splits line on the colons which are not escaped
// by a backslash. Blank lines, comments, and lines with fewer than
// five fields are reported as not ok.
func parsePgpassLine(line string) (e pgpassEntry, ok bool) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" || line[0] == '#' {
		return e, false
	}
	fields := make([]string, 0, 5)
	var sb strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			sb.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':' && len(fields) < 4:
			fields = append(fields, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	if len(fields) != 4 {
		return e, false
	}
	return pgpassEntry{
		host: fields[0], port: fields[1], db: fields[2],
		user: fields[3], pass: sb.String(),
	}, true
}

func escapePgpass(s string) string {
	return strings.NewReplacer(`\`, `\\`, `:`, `\:`).Replace(s)
}

// String formats e as a pgpass line without its trailing newline.
func (e pgpassEntry) String() string {
	return strings.Join([]string{
		escapePgpass(e.host), escapePgpass(e.port), escapePgpass(e.db),
		escapePgpass(e.user), escapePgpass(e.pass),
	}, ":")
}

func (e pgpassEntry) matches(host, port, db, user string) bool {
	match := func(pattern, v string) bool {
		return pattern == "*" || pattern == v
	}
	return match(e.host, host) && match(e.port, port) &&
		match(e.db, db) && match(e.user, user)
}

// sameTarget reports whether e and o are for the same exact
// connection target, ignoring their passwords.
func (e pgpassEntry) sameTarget(o pgpassEntry) bool {
	return e.host == o.host && e.port == o.port && e.db == o.db &&
		e.user == o.user
}

// readPgpass parses the path pgpass file. Unparsable lines are
// skipped like libpq does.
func readPgpass(path string) ([]pgpassEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ee []pgpassEntry
	for _, line := range strings.Split(string(data), "\n") {
		if e, ok := parsePgpassLine(line); ok {
			ee = append(ee, e)
		}
	}
	return ee, nil
}

// writePgpass writes ee into path with the 0600 permission which is
// required by libpq.
func writePgpass(path string, ee []pgpassEntry) error {
	var sb strings.Builder
	for _, e := range ee {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0o600)
}

// password finds the password of user for connecting to the db
// database on host:port. The first matching entry wins.
func (d Database) password(path, user string) (string, error) {
	ee, err := readPgpass(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	port := strconv.Itoa(d.Port)
	for _, e := range ee {
		if e.matches(d.Host, port, d.Name, user) {
			return e.pass, nil
		}
	}
	return "", fmt.Errorf("role %q: %w", user, ErrNoPassword)
}

// mergePgpass returns the entries of the existing path file (if any)
// with ee replacing the entries of the same targets, followed by the
// remaining ee entries. Entries of unrelated databases are kept.
func mergePgpass(path string, ee []pgpassEntry) ([]pgpassEntry, error) {
	old, err := readPgpass(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading pass-file: %w", err)
	}
	merged := make([]pgpassEntry, 0, len(old)+len(ee))
	used := make([]bool, len(ee))
	for _, o := range old {
		for i, e := range ee {
			if !used[i] && e.sameTarget(o) {
				o, used[i] = e, true
				break
			}
		}
		merged = append(merged, o)
	}
	for i, e := range ee {
		if !used[i] {
			merged = append(merged, e)
		}
	}
	return merged, nil
}

// newPassword returns a random URL-safe password with 144 bits of
// entropy.
func newPassword() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
