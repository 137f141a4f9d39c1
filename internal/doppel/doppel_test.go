package doppel

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/backmassage/doppelrender/internal/fingerprint"
	"github.com/backmassage/doppelrender/internal/render"
)

func digest(b byte) fingerprint.Digest {
	var d fingerprint.Digest
	d[0] = b
	return d
}

func proxies(frames ...int) []string {
	paths := make([]string, len(frames))
	for i, n := range frames {
		paths[i] = fmt.Sprintf("/tmp/dopthumbs/tiny%04d.png", n)
	}
	return paths
}

func TestFrameNumber(t *testing.T) {
	tests := []struct {
		path string
		want int
		ok   bool
	}{
		{"/tmp/dopthumbs/tiny0042.png", 42, true},
		{"tiny0000.png", 0, true},
		{"/renders/v2/shot2_tiny0042.png", 42, true}, // longest run wins
		{"a12_b34.png", 34, true},                    // tie: rightmost
		{"frame12345.png", 12345, true},              // wider than the padding
		{"/dir9999/noframe.png", 0, false},           // directory digits ignored
		{"thumb.png", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FrameNumber(tt.path)
			if got != tt.want || ok != tt.ok {
				t.Errorf("FrameNumber(%q) = %d, %v; want %d, %v", tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestGroup_Scenario(t *testing.T) {
	// Frames 2 and 3 look the same; 1, 4 and 5 are unique.
	buckets := fingerprint.Buckets{
		digest(9): proxies(5),
		digest(1): proxies(2, 3),
		digest(7): proxies(1),
		digest(3): proxies(4),
	}
	sets, dropped := Group(buckets)
	want := []Set{{1}, {2, 3}, {4}, {5}}
	if !equalSets(sets, want) {
		t.Errorf("Group = %v, want %v", sets, want)
	}
	if len(dropped) != 0 {
		t.Errorf("dropped = %v", dropped)
	}
	if err := Validate(sets); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestGroup_AllIdentical(t *testing.T) {
	buckets := fingerprint.Buckets{digest(1): proxies(10, 1, 2, 3, 4, 5, 6, 7, 8, 9)}
	sets, _ := Group(buckets)
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1", len(sets))
	}
	if sets[0].Core() != 1 || len(sets[0].Clones()) != 9 {
		t.Errorf("set = %v", sets[0])
	}
}

func TestGroup_Empty(t *testing.T) {
	sets, dropped := Group(fingerprint.Buckets{})
	if len(sets) != 0 || len(dropped) != 0 {
		t.Errorf("Group(empty) = %v, %v", sets, dropped)
	}
}

func TestGroup_DropsUnparseable(t *testing.T) {
	buckets := fingerprint.Buckets{
		digest(1): {"/tmp/tiny0001.png", "/tmp/thumb.png"},
		digest(2): {"/tmp/other.png"},
	}
	sets, dropped := Group(buckets)
	if !equalSets(sets, []Set{{1}}) {
		t.Errorf("sets = %v", sets)
	}
	if !slices.Equal(dropped, []string{"/tmp/other.png", "/tmp/thumb.png"}) {
		t.Errorf("dropped = %v", dropped)
	}
}

func TestGroup_CollidingNamesFailValidation(t *testing.T) {
	buckets := fingerprint.Buckets{
		digest(1): {"/tmp/tiny01.png"},
		digest(2): {"/tmp/tiny001.png"},
	}
	sets, _ := Group(buckets)
	if err := Validate(sets); !errors.Is(err, ErrNotPartition) {
		t.Errorf("Validate = %v, want ErrNotPartition", err)
	}
}

func TestGroup_PartitionProperty(t *testing.T) {
	// 1..30 spread over buckets by frame % 4.
	buckets := fingerprint.Buckets{}
	for n := 1; n <= 30; n++ {
		d := digest(byte(n % 4))
		buckets[d] = append(buckets[d], proxies(n)...)
	}
	sets, _ := Group(buckets)
	if err := Validate(sets); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if Frames(sets) != 30 {
		t.Errorf("Frames = %d, want 30", Frames(sets))
	}
	for _, s := range sets {
		if s.Core() != slices.Min(s) {
			t.Errorf("core of %v is not its minimum", s)
		}
	}
	if len(Missing(sets, render.Range{Start: 1, End: 30})) != 0 {
		t.Error("partition is missing frames")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		sets []Set
		ok   bool
	}{
		{"valid", []Set{{1}, {2, 3}, {4}}, true},
		{"empty list", nil, true},
		{"empty set", []Set{{1}, {}}, false},
		{"unsorted set", []Set{{3, 2}}, false},
		{"out of order", []Set{{4}, {1}}, false},
		{"overlap", []Set{{1, 3}, {2, 3}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.sets)
			if (err == nil) != tt.ok {
				t.Errorf("Validate(%v) = %v", tt.sets, err)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	sets := []Set{{1, 7}, {2, 3}, {4}, {5, 12}}
	kept, outside := Filter(sets, render.Range{Start: 2, End: 10})
	want := []Set{{2, 3}, {4}, {5}, {7}}
	if !equalSets(kept, want) {
		t.Errorf("kept = %v, want %v", kept, want)
	}
	if !slices.Equal(outside, []int{1, 12}) {
		t.Errorf("outside = %v", outside)
	}
}

func TestMissing(t *testing.T) {
	got := Missing([]Set{{1, 3}, {5}}, render.Range{Start: 1, End: 6})
	if !slices.Equal(got, []int{2, 4, 6}) {
		t.Errorf("Missing = %v", got)
	}
}

func TestSetString(t *testing.T) {
	if got := (Set{2, 3}).String(); got != "[2 3]" {
		t.Errorf("String = %q", got)
	}
}

func equalSets(a, b []Set) bool {
	return slices.EqualFunc(a, b, func(x, y Set) bool { return slices.Equal(x, y) })
}
