// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePgpassLine(t *testing.T) {
	e, ok := parsePgpassLine(`db:5432:libweb:admin:s3:cr\:et\\x`)
	require.True(t, ok)
	assert.Equal(t, pgpassEntry{
		host: "db", port: "5432", db: "libweb", user: "admin",
		pass: `s3:cr:et\x`,
	}, e, "the password may hold unescaped colons")

	e, ok = parsePgpassLine(`h\:1:*:*:u:p` + "\r")
	require.True(t, ok)
	assert.Equal(t, "h:1", e.host)
	assert.Equal(t, "p", e.pass)

	for _, line := range []string{"", "   ", "# db:5432:x:y:z", "a:b:c:d"} {
		_, ok := parsePgpassLine(line)
		assert.False(t, ok, line)
	}
}

func TestPgpassEntryRoundTrip(t *testing.T) {
	e := pgpassEntry{
		host: "db", port: "5432", db: "lib:web", user: `u\1`, pass: "p:q",
	}
	got, ok := parsePgpassLine(e.String())
	require.True(t, ok)
	assert.Equal(t, e, got)
}

func TestPgpassMatches(t *testing.T) {
	e := pgpassEntry{host: "*", port: "5432", db: "*", user: "libweb"}
	assert.True(t, e.matches("db", "5432", "libweb", "libweb"))
	assert.False(t, e.matches("db", "5433", "libweb", "libweb"))
	assert.False(t, e.matches("db", "5432", "libweb", "admin"))
}

func TestDatabasePassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".pgpass")
	require.NoError(t, os.WriteFile(path, []byte(`# libweb
other:5432:libweb:libweb:wrong
db:5432:libweb:libweb:first
*:*:*:libweb:second
`), 0o600))
	d := Database{Host: "db", Port: 5432, Name: "libweb"}
	pass, err := d.password(path, "libweb")
	require.NoError(t, err)
	assert.Equal(t, "first", pass)

	d.Host = "replica"
	pass, err = d.password(path, "libweb")
	require.NoError(t, err)
	assert.Equal(t, "second", pass)

	_, err = d.password(path, "admin")
	assert.ErrorIs(t, err, ErrNoPassword)
	_, err = d.password(filepath.Join(t.TempDir(), "missing"), "admin")
	assert.Error(t, err)
}

func TestMergePgpass(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".pgpass")
	fresh := []pgpassEntry{
		{host: "db", port: "5432", db: "libweb", user: "admin", pass: "a2"},
		{host: "db", port: "5432", db: "libweb", user: "libweb", pass: "n2"},
	}
	merged, err := mergePgpass(path, fresh)
	require.NoError(t, err)
	assert.Equal(t, fresh, merged, "a missing file is not an error")

	require.NoError(t, writePgpass(path, []pgpassEntry{
		{host: "db", port: "5432", db: "other", user: "admin", pass: "x"},
		{host: "db", port: "5432", db: "libweb", user: "admin", pass: "a1"},
	}))
	merged, err = mergePgpass(path, fresh)
	require.NoError(t, err)
	assert.Equal(t, []pgpassEntry{
		{host: "db", port: "5432", db: "other", user: "admin", pass: "x"},
		fresh[0],
		fresh[1],
	}, merged)

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}

func TestNewPassword(t *testing.T) {
	p1, err := newPassword()
	require.NoError(t, err)
	p2, err := newPassword()
	require.NoError(t, err)
	assert.Len(t, p1, 24)
	assert.NotEqual(t, p1, p2)
	assert.Regexp(t, `^[A-Za-z0-9_-]+$`, p1)
}
