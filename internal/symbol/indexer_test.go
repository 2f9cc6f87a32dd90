package symbol

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractSymbols_Python(t *testing.T) {
	src := `import os

class User:
    def method(self):
        pass

def helper():
    pass

async def fetch():
    pass
`
	idx := NewScanIndexer(0)
	got, err := idx.ExtractSymbols(src, "models")
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	for _, name := range []string{"User", "helper", "fetch"} {
		if got[name] != "models" {
			t.Errorf("expected %s -> models, got %q", name, got[name])
		}
	}
	if _, ok := got["method"]; ok {
		t.Error("nested method must not be indexed")
	}
}

func TestExtractSymbols_GDScript(t *testing.T) {
	src := `extends CharacterBody2D
class_name Player

func _ready():
    pass

static func spawn():
    pass
`
	idx := NewScanIndexer(0)
	got, err := idx.ExtractSymbols(src, "player")
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	if got["Player"] != "player" {
		t.Errorf("class_name Player not indexed: %v", got)
	}
	if got["_ready"] != "player" || got["spawn"] != "player" {
		t.Errorf("funcs not indexed: %v", got)
	}
}

func TestExtractSymbols_CacheReturnsCopies(t *testing.T) {
	idx := NewScanIndexer(4)
	first, _ := idx.ExtractSymbols("def a():\n    pass\n", "m")
	first["a"] = "tampered"
	second, _ := idx.ExtractSymbols("def a():\n    pass\n", "m")
	if second["a"] != "m" {
		t.Fatalf("cache leaked mutation: %v", second)
	}
}

func TestModulePath(t *testing.T) {
	cases := map[string]string{
		"models.py":            "models",
		"game_logic/player.py": "game_logic.player",
		"scripts/enemy.gd":     "scripts.enemy",
	}
	for in, want := range cases {
		if got := ModulePath(in); got != want {
			t.Errorf("ModulePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIndexTree(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("models.py", "class User:\n    pass\n")
	write("logic/service.py", "def run():\n    pass\n")
	write("notes.txt", "class NotCode:\n")
	write(".venv/lib.py", "def hidden():\n    pass\n")

	idx := NewScanIndexer(0)
	got, err := idx.IndexTree(root)
	if err != nil {
		t.Fatalf("index tree: %v", err)
	}
	if got["User"] != "models" {
		t.Errorf("User -> %q, want models", got["User"])
	}
	if got["run"] != "logic.service" {
		t.Errorf("run -> %q, want logic.service", got["run"])
	}
	if _, ok := got["NotCode"]; ok {
		t.Error("non-source file must be ignored")
	}
	if _, ok := got["hidden"]; ok {
		t.Error(".venv must be skipped")
	}
}

func TestIndexTree_MissingRoot(t *testing.T) {
	idx := NewScanIndexer(0)
	if _, err := idx.IndexTree(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing root")
	}
}
