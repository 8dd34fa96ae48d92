package toc

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFixtureFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quest.sav")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestBuildChangeset(t *testing.T) {
	records := []Record{
		{Key: "goal_state_1", Offset: 300, Kind: SignedInt32, Width: 4},
		{Key: "goal_state_2", Offset: 320, Kind: SignedInt32, Width: 4},
	}
	edits, err := BuildChangeset(KindQuestData, records, "-5")
	if err != nil {
		t.Fatalf("BuildChangeset: %v", err)
	}
	if len(edits) != 2 {
		t.Fatalf("got %d edits, want 2", len(edits))
	}
	for i, e := range edits {
		if e.Offset != records[i].Offset {
			t.Fatalf("edit %d offset = %d, want %d", i, e.Offset, records[i].Offset)
		}
		if ReadI32(e.Data) != -5 {
			t.Fatalf("edit %d data = % X", i, e.Data)
		}
	}
}

func TestBuildChangesetTimeForm(t *testing.T) {
	records := []Record{{Key: "DrSTime", Offset: 300, Kind: SignedInt32, Width: 4}}
	edits, err := BuildChangeset(KindQuestData, records, "1:00:00")
	if err != nil {
		t.Fatalf("BuildChangeset: %v", err)
	}
	if ReadI32(edits[0].Data) != 3600000 {
		t.Fatalf("time edit data = %d, want 3600000", ReadI32(edits[0].Data))
	}

	// The counter in the info chunk is unsigned and takes the same colon form.
	info := []Record{{Key: "total_time", Offset: 296, Kind: UnsignedInt32, Width: 4}}
	edits, err = BuildChangeset(KindInfo, info, "4:05:01:00")
	if err != nil {
		t.Fatalf("BuildChangeset: %v", err)
	}
	if ReadU32(edits[0].Data) != 363660000 {
		t.Fatalf("time edit data = %d, want 363660000", ReadU32(edits[0].Data))
	}
}

func TestBuildChangesetAllOrNothing(t *testing.T) {
	records := []Record{
		{Key: "goal_state_1", Offset: 300, Kind: SignedInt32, Width: 4},
		{Key: "created_by", Offset: 320, Kind: FixedString, Width: 16},
	}
	// The text packs fine as a string, but the numeric record rejects it and
	// no edit may survive for the record that would have succeeded.
	edits, err := BuildChangeset(KindQuestData, records, "not-a-value")
	if err == nil {
		t.Fatal("BuildChangeset succeeded, want error")
	}
	if !errors.Is(err, ErrNotANumber) {
		t.Fatalf("got %v, want %v", err, ErrNotANumber)
	}
	if edits != nil {
		t.Fatalf("got %d edits alongside the error", len(edits))
	}
}

func TestBuildChangesetTimeRangeRejected(t *testing.T) {
	records := []Record{{Key: "DrSTime", Offset: 300, Kind: SignedInt32, Width: 4}}
	if _, err := BuildChangeset(KindQuestData, records, "0:75"); !errors.Is(err, ErrMinSecRange) {
		t.Fatalf("got %v, want %v", err, ErrMinSecRange)
	}
}

func TestApplyChangesetEndToEnd(t *testing.T) {
	payload := append(questRecord("goal_state_1", 1), questRecord("goal_state_2", 2)...)
	payload = append(payload, questRecord("mission_flag", 3)...)
	original := buildTestFile([]fixtureChunk{{name: KindQuestData, payload: payload}})
	path := writeFixtureFile(t, original)

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	entries, err := f.ReadTOC()
	if err != nil {
		t.Fatalf("ReadTOC: %v", err)
	}
	entry, err := Lookup(entries, KindQuestData)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	chunk, err := f.DecodeChunk(entry)
	if err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}
	matched, err := FilterRecords(chunk.Records, "^goal_state", false)
	if err != nil {
		t.Fatalf("FilterRecords: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("matched %d records, want 2", len(matched))
	}
	edits, err := BuildChangeset(chunk.Kind, matched, "99")
	if err != nil {
		t.Fatalf("BuildChangeset: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := ApplyChangeset(path, edits); err != nil {
		t.Fatalf("ApplyChangeset: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(after) != len(original) {
		t.Fatalf("file size changed: %d -> %d", len(original), len(after))
	}

	g, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer g.Close()
	entries, err = g.ReadTOC()
	if err != nil {
		t.Fatalf("ReadTOC after write: %v", err)
	}
	entry, err = Lookup(entries, KindQuestData)
	if err != nil {
		t.Fatalf("Lookup after write: %v", err)
	}
	chunk, err = g.DecodeChunk(entry)
	if err != nil {
		t.Fatalf("DecodeChunk after write: %v", err)
	}
	want := map[string]int32{"goal_state_1": 99, "goal_state_2": 99, "mission_flag": 3}
	for _, rec := range chunk.Records {
		if rec.Int != want[rec.Key] {
			t.Fatalf("record %q = %d, want %d", rec.Key, rec.Int, want[rec.Key])
		}
	}
}

func TestApplyChangesetBounds(t *testing.T) {
	original := buildTestFile([]fixtureChunk{{name: KindQuestData, payload: questRecord("goal_state_1", 1)}})
	path := writeFixtureFile(t, original)

	edits := []Edit{
		{Offset: headerBlockSize, Data: PutI32(99)},
		{Offset: int64(len(original)) + 100, Data: PutI32(99)},
	}
	if err := ApplyChangeset(path, edits); err == nil {
		t.Fatal("ApplyChangeset succeeded on an out-of-range edit")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	// The in-range edit must not land either; the session validates every
	// offset before the first write.
	if !bytes.Equal(after, original) {
		t.Fatal("file modified despite failed validation")
	}
}

func TestApplyChangesetNoEdits(t *testing.T) {
	original := buildTestFile(nil)
	path := writeFixtureFile(t, original)
	if err := ApplyChangeset(path, nil); err != nil {
		t.Fatalf("ApplyChangeset(nil): %v", err)
	}
	if err := ApplyChangeset(path, []Edit{{Offset: 10}}); err != nil {
		t.Fatalf("ApplyChangeset(empty data): %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(after, original) {
		t.Fatal("file modified by empty changeset")
	}
}
