package main

import (
	"bytes"
	"embed"
	"fmt"
	"io"
)

//go:embed sql
var embeddedSQLFS embed.FS

//go:embed ai_strategies.json
var embeddedAIStrategies []byte

// sqlSetupFiles are the database setup scripts, in execution order.  The
// table must exist before the functions that reference it.
var sqlSetupFiles = []string{
	"sql/users.sql",
	"sql/user_create.sql",
	"sql/user_read.sql",
	"sql/user_update_password.sql",
	"sql/user_update_wins_increment.sql",
	"sql/user_delete.sql",
}

// sqlFiles opens the embedded database setup scripts in execution order.
func sqlFiles() ([]io.Reader, error) {
	files := make([]io.Reader, len(sqlSetupFiles))
	for i, n := range sqlSetupFiles {
		b, err := embeddedSQLFS.ReadFile(n)
		if err != nil {
			return nil, fmt.Errorf("reading embedded sql file %v: %w", n, err)
		}
		files[i] = bytes.NewReader(b)
	}
	return files, nil
}
