// Package migrations applies the embedded database schemas on startup.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// PostgresFS embeds the PostgreSQL schema files.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the ClickHouse schema files.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS

// sqlFiles lists the .sql files under dir in lexical order, so the
// NNN_name convention determines apply order.
func sqlFiles(fsys embed.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// readMigration loads one migration file and checks it is splittable.
func readMigration(fsys embed.FS, dir, file string) (string, error) {
	data, err := fs.ReadFile(fsys, dir+"/"+file)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", file, err)
	}
	if err := validateNoSemicolonInStrings(string(data)); err != nil {
		return "", fmt.Errorf("validate migration %s: %w", file, err)
	}
	return string(data), nil
}
