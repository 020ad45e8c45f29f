package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func writeRecordFile(t *testing.T, dir, id string, spec *recordSpec) {
	t.Helper()
	data, err := json.Marshal(Asset[*recordSpec]{
		Version:    1,
		Identifier: Identifier(id),
		Spec:       spec,
	})
	if err != nil {
		t.Fatalf("marshalling asset: %s", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0644); err != nil {
		t.Fatalf("writing asset file: %s", err)
	}
}

func TestFileStoreLoads(t *testing.T) {
	dir := t.TempDir()
	writeRecordFile(t, dir, "jaina", &recordSpec{Name: "Jaina", Level: 60})
	writeRecordFile(t, dir, "uther", &recordSpec{Name: "Uther", Level: 58})
	// Non-json files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("writing stray file: %s", err)
	}

	store, err := NewFileStore[*recordSpec](dir)
	if err != nil {
		t.Fatalf("opening store: %s", err)
	}

	testutil.AssertEqual(t, "count", len(store.GetAll()), 2)
	testutil.AssertEqual(t, "name", store.Get("jaina").Name, "Jaina")
	testutil.AssertEqual(t, "level", store.Get("uther").Level, uint16(58))
}

func TestFileStoreLoadFailures(t *testing.T) {
	tests := map[string]struct {
		setup func(t *testing.T, dir string)
	}{
		"missing directory": {
			setup: func(t *testing.T, dir string) {
				if err := os.RemoveAll(dir); err != nil {
					t.Fatalf("removing dir: %s", err)
				}
			},
		},
		"malformed json": {
			setup: func(t *testing.T, dir string) {
				if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0644); err != nil {
					t.Fatalf("writing file: %s", err)
				}
			},
		},
		"invalid record": {
			setup: func(t *testing.T, dir string) {
				writeRecordFile(t, dir, "nameless", &recordSpec{Level: 1})
			},
		},
		"duplicate id across files": {
			setup: func(t *testing.T, dir string) {
				data, _ := json.Marshal(Asset[*recordSpec]{
					Version: 1, Identifier: "jaina", Spec: &recordSpec{Name: "Jaina"},
				})
				for _, f := range []string{"a.json", "b.json"} {
					if err := os.WriteFile(filepath.Join(dir, f), data, 0644); err != nil {
						t.Fatalf("writing file: %s", err)
					}
				}
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)
			if _, err := NewFileStore[*recordSpec](dir); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestFileStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore[*recordSpec](dir)
	if err != nil {
		t.Fatalf("opening store: %s", err)
	}

	if err := store.Save("jaina", &recordSpec{Name: "Jaina", Level: 60}); err != nil {
		t.Fatalf("saving: %s", err)
	}
	testutil.AssertEqual(t, "cached", store.Get("jaina").Name, "Jaina")

	// An update hits both the cache and the file.
	if err := store.Save("jaina", &recordSpec{Name: "Jaina", Level: 61}); err != nil {
		t.Fatalf("updating: %s", err)
	}
	testutil.AssertEqual(t, "updated", store.Get("jaina").Level, uint16(61))

	// No temp files left behind by the atomic write.
	if _, err := os.Stat(filepath.Join(dir, "jaina.json.tmp")); !os.IsNotExist(err) {
		t.Fatal("temp file survived the rename")
	}

	// A fresh store sees the saved record.
	again, err := NewFileStore[*recordSpec](dir)
	if err != nil {
		t.Fatalf("reopening store: %s", err)
	}
	testutil.AssertEqual(t, "reloaded", again.Get("jaina").Level, uint16(61))
}

func TestFileStoreGetUnknown(t *testing.T) {
	store, err := NewFileStore[*recordSpec](t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %s", err)
	}
	if store.Get("nobody") != nil {
		t.Fatal("expected nil for an unknown id")
	}
}

func TestFileStoreGetAllCopies(t *testing.T) {
	store, err := NewFileStore[*recordSpec](t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %s", err)
	}
	if err := store.Save("jaina", &recordSpec{Name: "Jaina"}); err != nil {
		t.Fatalf("saving: %s", err)
	}

	all := store.GetAll()
	delete(all, "jaina")
	testutil.AssertEqual(t, "store unaffected", len(store.GetAll()), 1)
}
