package indent

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/keyfold/internal/folding"
)

type lines []string

func (l lines) LineCount() int           { return len(l) }
func (l lines) LineText(line int) string { return l[line-1] }

func snapshotOf(text string) lines {
	return lines(strings.Split(text, "\n"))
}

func TestWidth(t *testing.T) {
	tests := []struct {
		text    string
		tabSize int
		want    int
	}{
		{"x", 4, 0},
		{"    x", 4, 4},
		{"\tx", 4, 4},
		{"\tx", 8, 8},
		{"  \tx", 4, 4},
		{"\t  x", 4, 6},
		{"\tx", 0, DefaultTabSize},
		{"", 4, -1},
		{"   ", 4, -1},
		{"\t\r", 4, -1},
	}

	for _, tt := range tests {
		if got := Width(tt.text, tt.tabSize); got != tt.want {
			t.Errorf("Width(%q, %d): expected %d, got %d", tt.text, tt.tabSize, tt.want, got)
		}
	}
}

func TestComputeRanges(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []folding.Range
	}{
		{
			name: "flat",
			text: "a\nb\nc",
			want: nil,
		},
		{
			name: "go functions",
			text: "func a() {\n\tx()\n}\n\nfunc b() {\n\tif y {\n\t\tz()\n\t}\n}",
			want: []folding.Range{{StartLine: 1, EndLine: 2}, {StartLine: 5, EndLine: 8}, {StartLine: 6, EndLine: 7}},
		},
		{
			name: "python with blank lines inside",
			text: "def f():\n    a = 1\n\n    return a\n\n\nx = 2",
			want: []folding.Range{{StartLine: 1, EndLine: 4}},
		},
		{
			name: "block runs to end of file",
			text: "root:\n  child:\n    leaf\n  sibling\n",
			want: []folding.Range{{StartLine: 1, EndLine: 4}, {StartLine: 2, EndLine: 3}},
		},
		{
			name: "dedent below start level",
			text: "    a\n        b\nc\n    d",
			want: []folding.Range{{StartLine: 1, EndLine: 2}, {StartLine: 3, EndLine: 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Provider{}.ComputeRanges(context.Background(), snapshotOf(tt.text), 4)
			if err != nil {
				t.Fatalf("ComputeRanges failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("range %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestComputeRangesTabSize(t *testing.T) {
	// With a tab size of 2, "\t" and "  " are the same level.
	text := "a\n\tb\n  c\n    d"

	got, err := Provider{}.ComputeRanges(context.Background(), snapshotOf(text), 2)
	if err != nil {
		t.Fatalf("ComputeRanges failed: %v", err)
	}
	want := []folding.Range{{StartLine: 1, EndLine: 4}, {StartLine: 3, EndLine: 4}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestComputeRangesMinLines(t *testing.T) {
	text := "a\n\tb\nc\n\td\n\te"

	got, err := Provider{MinLines: 3}.ComputeRanges(context.Background(), snapshotOf(text), 4)
	if err != nil {
		t.Fatalf("ComputeRanges failed: %v", err)
	}
	if len(got) != 1 || got[0] != (folding.Range{StartLine: 3, EndLine: 5}) {
		t.Errorf("expected only [3-5], got %v", got)
	}
}

func TestComputeRangesCancelled(t *testing.T) {
	text := strings.Repeat("a\n\tb\n", cancelCheckInterval)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Provider{}.ComputeRanges(ctx, snapshotOf(text), 4)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestComputeRangesAreFoldable(t *testing.T) {
	text := "a\n  b\n    c\n  d\n\ne\n\tf\n\t\tg\n"
	got, err := Provider{}.ComputeRanges(context.Background(), snapshotOf(text), 4)
	if err != nil {
		t.Fatalf("ComputeRanges failed: %v", err)
	}
	prev := 0
	for _, r := range got {
		if !r.Foldable() {
			t.Errorf("range %v is not foldable", r)
		}
		if r.StartLine < prev {
			t.Errorf("ranges not sorted: %v", got)
		}
		prev = r.StartLine
	}
}
