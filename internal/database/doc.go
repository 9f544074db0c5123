// Package database stores augmentation history in SQLite.
//
// ResultDB keeps three tables in one file under the XDG data directory:
//   - pages: the last fetch of every dictionary page
//   - augment_reports: full reports as JSON with their summary
//   - lexeme_creations: lexemes created through the /add endpoint
//
// modernc.org/sqlite is used so the binary stays CGO-free. WAL mode lets
// the history command read while a serve process writes.
package database
