/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package migrations holds the numbered schema scripts. File names carry
// the schema version as a zero-padded prefix; the migrator applies every
// script newer than the database's user_version in name order.
package migrations

import "embed"

//go:embed *.sql
var All embed.FS
