package scripting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func writeScript(t *testing.T, root, sub, name, body string) {
	t.Helper()
	dir := filepath.Join(root, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEngineDifficultyCurve(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "difficulty", "curve.lua", `
function spawn_interval(level, base_ms)
  return base_ms / (level + 1)
end

function hostile_scale(level)
  return { hp = 1 + level, speed = 2 }
end
`)
	e, err := NewEngine(root, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer e.Close()

	if got := e.SpawnInterval(3, time.Second); got != 250*time.Millisecond {
		t.Fatalf("interval = %s, want 250ms", got)
	}
	s := e.HostileScale(2)
	if s.HP != 3 || s.Speed != 2 || s.Damage != 1 {
		t.Fatalf("scale = %+v", s)
	}
}

func TestEngineFallbacks(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "difficulty", "broken.lua", `
function spawn_interval(level, base_ms)
  return -5
end

function hostile_scale(level)
  error("boom")
end
`)
	e, err := NewEngine(root, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer e.Close()

	if got := e.SpawnInterval(1, time.Second); got != time.Second {
		t.Fatalf("interval = %s, want base", got)
	}
	if got := e.HostileScale(1); got != Identity {
		t.Fatalf("scale = %+v, want identity", got)
	}
}

func TestEngineMissingDirAndSyntaxError(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "absent"), zap.NewNop())
	if err != nil {
		t.Fatalf("missing dir should load nothing: %v", err)
	}
	if got := e.SpawnInterval(0, 700*time.Millisecond); got != 700*time.Millisecond {
		t.Fatalf("interval = %s", got)
	}
	e.Close()

	root := t.TempDir()
	writeScript(t, root, "difficulty", "bad.lua", "function (")
	if _, err := NewEngine(root, zap.NewNop()); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestShippedCurve(t *testing.T) {
	e, err := NewEngine(filepath.Join("..", "..", "scripts"), zap.NewNop())
	if err != nil {
		t.Fatalf("load shipped scripts: %v", err)
	}
	defer e.Close()

	prev := e.SpawnInterval(0, time.Second)
	if prev != time.Second {
		t.Fatalf("level 0 interval = %s, want base", prev)
	}
	for level := 1; level <= 3; level++ {
		got := e.SpawnInterval(level, time.Second)
		if got > prev || got <= 0 {
			t.Fatalf("level %d interval %s not in (0, %s]", level, got, prev)
		}
		prev = got
	}
	if s := e.HostileScale(0); s != Identity {
		t.Fatalf("level 0 scale = %+v", s)
	}
}
