package fn

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

func TestResultOkErr(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("expected ok result")
	}
	v, err := r.Unwrap()
	if v != 42 || err != nil {
		t.Fatalf("unwrap: got %d, %v", v, err)
	}

	e := Err[int](errors.New("boom"))
	if e.IsOk() {
		t.Fatal("expected error result")
	}
	if got := e.UnwrapOr(7); got != 7 {
		t.Fatalf("UnwrapOr: got %d", got)
	}
}

func TestFromPair(t *testing.T) {
	if r := FromPair(1, nil); r.IsErr() {
		t.Fatal("expected ok")
	}
	if r := FromPair(0, errors.New("x")); r.IsOk() {
		t.Fatal("expected err")
	}
}

func TestCollect(t *testing.T) {
	all := []Result[int]{Ok(1), Ok(2), Ok(3)}
	r := Collect(all)
	vals, err := r.Unwrap()
	if err != nil || len(vals) != 3 {
		t.Fatalf("collect: %v %v", vals, err)
	}

	bad := []Result[int]{Ok(1), Err[int](errors.New("mid")), Ok(3)}
	if r := Collect(bad); r.IsOk() {
		t.Fatal("expected error from Collect")
	}
}

func TestThenShortCircuits(t *testing.T) {
	ctx := context.Background()
	first := func(_ context.Context, s string) Result[int] {
		return FromPair(strconv.Atoi(s))
	}
	second := func(_ context.Context, n int) Result[int] {
		return Ok(n * 2)
	}
	combined := Then(Stage[string, int](first), Stage[int, int](second))

	v, err := combined(ctx, "21").Unwrap()
	if err != nil || v != 42 {
		t.Fatalf("got %d, %v", v, err)
	}
	if r := combined(ctx, "nope"); r.IsOk() {
		t.Fatal("expected parse error to short-circuit")
	}
}

func TestPipeline(t *testing.T) {
	ctx := context.Background()
	inc := MapStage(func(n int) int { return n + 1 })
	p := Pipeline(inc, inc, inc)
	v, err := p(ctx, 0).Unwrap()
	if err != nil || v != 3 {
		t.Fatalf("got %d, %v", v, err)
	}
}

func TestTapStage(t *testing.T) {
	seen := 0
	tap := TapStage(func(_ context.Context, n int) { seen = n })
	v, err := tap(context.Background(), 9).Unwrap()
	if err != nil || v != 9 || seen != 9 {
		t.Fatalf("tap: v=%d seen=%d err=%v", v, seen, err)
	}
}

func TestTracedStagePassesThrough(t *testing.T) {
	stage := TracedStage("double", MapStage(func(n int) int { return n * 2 }))
	v, err := stage(context.Background(), 5).Unwrap()
	if err != nil || v != 10 {
		t.Fatalf("traced: %d %v", v, err)
	}
	failing := TracedStage("fail", Stage[int, int](func(context.Context, int) Result[int] {
		return Errf[int]("bad input")
	}))
	if r := failing(context.Background(), 1); r.IsOk() {
		t.Fatal("expected traced stage to propagate error")
	}
}
