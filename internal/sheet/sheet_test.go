package sheet

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "words.xlsx")
	in := &Table{
		Header: []string{"headword", "Sanaluokka", "translations"},
		Rows: [][]string{
			{"koira", "noun", "hund"},
			{"kissa", "noun"},
		},
	}
	if err := Write(path, in); err != nil {
		t.Fatal(err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in.Header, got.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if got.Get(0, 2) != "hund" || got.Get(1, 0) != "kissa" || got.Get(1, 2) != "" {
		t.Errorf("rows = %v", got.Rows)
	}
}

func TestTableColumns(t *testing.T) {
	t.Parallel()

	tbl := &Table{Header: []string{"a"}, Rows: [][]string{{"1"}}}
	if tbl.Column("b") != -1 {
		t.Error("unknown column found")
	}
	b := tbl.EnsureColumn("b")
	if b != 1 || tbl.EnsureColumn("b") != 1 {
		t.Errorf("EnsureColumn() = %d", b)
	}
	tbl.Set(0, 3, "x")
	if diff := cmp.Diff([]string{"1", "", "", "x"}, tbl.Rows[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	if tbl.Get(5, 0) != "" || tbl.Get(0, -1) != "" {
		t.Error("out of range cells are not empty")
	}
}

func TestReadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Read(filepath.Join(t.TempDir(), "none.xlsx")); err == nil {
		t.Error("expected error")
	}
}
