package names

import (
	"strings"
	"testing"

	"example.com/tabedit/internal/toc"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"info", toc.KindInfo},
		{"questdb", toc.KindQuestData},
		{"questcmp", toc.KindQuestCampaign},
		{"QUEST_DB", toc.KindQuestData},
		{"BRHEAD", toc.KindInfo},
	}
	for _, tc := range tests {
		got, err := Resolve(tc.id)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tc.id, err)
		}
		if got != tc.want {
			t.Fatalf("Resolve(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("qust")
	if err == nil {
		t.Fatal("Resolve accepted an unknown table")
	}
	msg := err.Error()
	for _, id := range TableIDs() {
		if !strings.Contains(msg, id) {
			t.Fatalf("error %q does not list valid table %q", msg, id)
		}
	}

	// A close miss also names its likely target.
	_, err = Resolve("quest")
	if err == nil {
		t.Fatal("Resolve accepted a prefix-only table name")
	}
	if !strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("error %q carries no suggestion", err)
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"INFO", []string{"info"}},
		{"quest", []string{"questcmp", "questdb"}},
		{"cmp", []string{"questcmp"}},
		{"brhead", []string{"info"}},
		{"zzz", nil},
		{"   ", nil},
	}
	for _, tc := range tests {
		got := Suggest(tc.input)
		if len(got) != len(tc.want) {
			t.Fatalf("Suggest(%q) = %v, want %v", tc.input, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("Suggest(%q) = %v, want %v", tc.input, got, tc.want)
			}
		}
	}
}

func TestTableIDsSorted(t *testing.T) {
	ids := TableIDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("TableIDs not sorted: %v", ids)
		}
	}
	for _, id := range ids {
		if _, ok := KindFor(id); !ok {
			t.Fatalf("KindFor(%q) missing", id)
		}
	}
}
