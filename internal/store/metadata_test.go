package store

import (
	"strings"
	"testing"
)

func newTestMetadataShard(t *testing.T) *MetadataShard {
	t.Helper()
	static, dynamic := testConfigs(t, 1, 2)
	coord := mustFormatAndOpen(t, static, dynamic)
	return coord.meta
}

func TestMetadataShard_SetGetDelete(t *testing.T) {
	meta := newTestMetadataShard(t)

	if err := meta.SetMeta("backfill_watermark", []byte("42")); err != nil {
		t.Fatalf("SetMeta() = %v", err)
	}
	val, found, err := meta.GetMeta("backfill_watermark")
	if err != nil || !found || string(val) != "42" {
		t.Fatalf("GetMeta() = (%q, %v, %v), want (42, true, nil)", val, found, err)
	}

	if err := meta.DeleteMeta("backfill_watermark"); err != nil {
		t.Fatalf("DeleteMeta() = %v", err)
	}
	if _, found, err := meta.GetMeta("backfill_watermark"); err != nil || found {
		t.Fatalf("GetMeta() after delete = (found=%v, err=%v), want (false, nil)", found, err)
	}
}

func TestMetadataShard_GetMissingKey(t *testing.T) {
	meta := newTestMetadataShard(t)
	if _, found, err := meta.GetMeta("never-set"); err != nil || found {
		t.Fatalf("GetMeta(never-set) = (found=%v, err=%v), want (false, nil)", found, err)
	}
}

func TestMetadataShard_OverwriteIsUnconditional(t *testing.T) {
	meta := newTestMetadataShard(t)
	if err := meta.SetMeta("k", []byte("first")); err != nil {
		t.Fatalf("SetMeta(first) = %v", err)
	}
	if err := meta.SetMeta("k", []byte("second")); err != nil {
		t.Fatalf("SetMeta(second) = %v", err)
	}
	val, found, err := meta.GetMeta("k")
	if err != nil || !found || string(val) != "second" {
		t.Fatalf("GetMeta() = (%q, %v, %v), want (second, true, nil)", val, found, err)
	}
}

func TestMetadataShard_RejectsOversizedKey(t *testing.T) {
	meta := newTestMetadataShard(t)
	oversized := strings.Repeat("k", MaxKeySize+1)
	if _, _, err := meta.GetMeta(oversized); err == nil {
		t.Fatal("GetMeta() with an oversized name succeeded, want error")
	}
	if err := meta.SetMeta(oversized, []byte("v")); err == nil {
		t.Fatal("SetMeta() with an oversized name succeeded, want error")
	}
	if err := meta.DeleteMeta(oversized); err == nil {
		t.Fatal("DeleteMeta() with an oversized name succeeded, want error")
	}
}
