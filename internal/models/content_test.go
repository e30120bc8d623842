package models

import (
	"encoding/json"
	"testing"
)

func TestStringListUnmarshal(t *testing.T) {
	t.Run("array of strings", func(t *testing.T) {
		var s StringList
		if err := json.Unmarshal([]byte(`["a","b"]`), &s); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(s) != 2 || s[0] != "a" || s[1] != "b" {
			t.Errorf("got %v, want [a b]", s)
		}
	})

	t.Run("newline-separated string", func(t *testing.T) {
		var s StringList
		if err := json.Unmarshal([]byte(`"https://youtu.be/x\n\n  https://youtu.be/y  \n"`), &s); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(s) != 2 {
			t.Fatalf("got %d entries, want 2: %v", len(s), s)
		}
		if s[0] != "https://youtu.be/x" || s[1] != "https://youtu.be/y" {
			t.Errorf("got %v", s)
		}
	})

	t.Run("rejects other shapes", func(t *testing.T) {
		var s StringList
		if err := json.Unmarshal([]byte(`42`), &s); err == nil {
			t.Error("expected error for numeric input")
		}
	})
}

func TestDocumentBucketsSorted(t *testing.T) {
	doc := NewDocument()
	doc.Content["library/press"] = nil
	doc.Content["about"] = nil
	doc.Content["library/academic"] = nil

	got := doc.Buckets()
	want := []string{"about", "library/academic", "library/press"}
	if len(got) != len(want) {
		t.Fatalf("got %d buckets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDocumentRevNotSerialized(t *testing.T) {
	doc := NewDocument()
	doc.SetRev("abc123")

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var round Document
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if round.Rev() != "" {
		t.Errorf("revision token leaked into serialized form: %q", round.Rev())
	}
}
