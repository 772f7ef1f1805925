package store

import "testing"

// fakeCursor is an in-memory Cursor over a sorted slice of key/value
// pairs, used to exercise mergeCursor without a real Btree.
type fakeCursor struct {
	pairs []fakePair
	idx   int
}

type fakePair struct {
	key Key
	val Value
}

func newFakeCursor(keys ...string) *fakeCursor {
	pairs := make([]fakePair, len(keys))
	for i, k := range keys {
		pairs[i] = fakePair{key: Key(k), val: ValueOf([]byte(k))}
	}
	return &fakeCursor{pairs: pairs, idx: -1}
}

func (c *fakeCursor) Next() bool {
	c.idx++
	return c.idx < len(c.pairs)
}

func (c *fakeCursor) Key() Key     { return c.pairs[c.idx].key }
func (c *fakeCursor) Value() Value { return c.pairs[c.idx].val }
func (c *fakeCursor) Close()       {}

func TestMergeCursor_AscendingAcrossShards(t *testing.T) {
	// "a","c","e" land on one shard; "b","d" on another, mirroring
	// spec.md §8 scenario 3's cross-shard range scan.
	cursors := []Cursor{
		newFakeCursor("a", "c", "e"),
		newFakeCursor("b", "d"),
	}
	mc := newMergeCursor(cursors)
	defer mc.Close()

	var got []string
	for mc.Next() {
		got = append(got, string(mc.Key()))
	}
	want := []string{"a", "b", "c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("merge produced %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("merge produced %v, want %v", got, want)
		}
	}
}

func TestMergeCursor_EmptyShardsSkipped(t *testing.T) {
	cursors := []Cursor{
		newFakeCursor(),
		newFakeCursor("x", "y"),
		newFakeCursor(),
	}
	mc := newMergeCursor(cursors)
	defer mc.Close()

	var got []string
	for mc.Next() {
		got = append(got, string(mc.Key()))
	}
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("merge over mixed empty/non-empty shards = %v, want [x y]", got)
	}
}

func TestMergeCursor_AllEmpty(t *testing.T) {
	mc := newMergeCursor([]Cursor{newFakeCursor(), newFakeCursor()})
	defer mc.Close()
	if mc.Next() {
		t.Fatal("Next() on an all-empty merge returned true")
	}
}

func TestMergeCursor_SingleShardUnchanged(t *testing.T) {
	// n_slices = 1 still serves rget by returning shard 0's stream
	// unchanged, per spec.md §8's boundary case.
	mc := newMergeCursor([]Cursor{newFakeCursor("a", "b", "c")})
	defer mc.Close()

	var got []string
	for mc.Next() {
		got = append(got, string(mc.Key()))
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("single-shard merge = %v, want %v", got, want)
		}
	}
}
