package lua

import (
	"context"
	"errors"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func TestNewState(t *testing.T) {
	state := NewState()
	defer state.Close()

	if state.IsClosed() {
		t.Error("NewState() returned closed state")
	}
}

func TestStateRestrictedGlobals(t *testing.T) {
	state := NewState()
	defer state.Close()

	for _, name := range []string{"io", "os", "debug", "package", "dofile", "loadfile", "load"} {
		if v := state.GetGlobal(name); v != glua.LNil {
			t.Errorf("expected %s to be nil, got %s", name, v.Type())
		}
	}
	for _, name := range []string{"string", "table", "math", "ipairs"} {
		if v := state.GetGlobal(name); v == glua.LNil {
			t.Errorf("expected %s to be available", name)
		}
	}
}

func TestStateDoStringSyntaxError(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(`invalid lua code !!!`); err == nil {
		t.Error("DoString() with invalid code should return error")
	}
}

func TestStateCall(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(`function add(a, b) return a + b end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	results, err := state.Call(context.Background(), "add", func(*glua.LState) []glua.LValue {
		return []glua.LValue{glua.LNumber(2), glua.LNumber(3)}
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Call() returned %d results, want 1", len(results))
	}
	if num, ok := results[0].(glua.LNumber); !ok || float64(num) != 5 {
		t.Errorf("add(2, 3) = %v, want 5", results[0])
	}
}

func TestStateCallMissingFunction(t *testing.T) {
	state := NewState()
	defer state.Close()

	_, err := state.Call(context.Background(), "nope", nil)
	if !errors.Is(err, ErrFunctionNotFound) {
		t.Errorf("expected ErrFunctionNotFound, got %v", err)
	}
}

func TestStateCallRuntimeError(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(`function boom() error("bad") end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if _, err := state.Call(context.Background(), "boom", nil); err == nil {
		t.Error("expected an error from boom()")
	}

	// The state stays usable after a failed call.
	if err := state.DoString(`x = 1`); err != nil {
		t.Errorf("DoString() after failed call error = %v", err)
	}
}

func TestStateCallTimeout(t *testing.T) {
	state := NewState(WithCallTimeout(50 * time.Millisecond))
	defer state.Close()

	if err := state.DoString(`function spin() while true do end end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	start := time.Now()
	_, err := state.Call(context.Background(), "spin", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("call took too long: %v", time.Since(start))
	}
}

func TestStateClose(t *testing.T) {
	state := NewState()

	if err := state.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if !state.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := state.DoString(`x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("expected ErrStateClosed, got %v", err)
	}
	if _, err := state.Call(context.Background(), "f", nil); !errors.Is(err, ErrStateClosed) {
		t.Errorf("expected ErrStateClosed, got %v", err)
	}
}
