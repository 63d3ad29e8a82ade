package scores

import (
	"testing"
)

func TestParse_BareAndNested(t *testing.T) {
	raw := []byte(`{"reading_comprehension":45,"grammar":{"score":70},"vocabulary":72.5,"feedback":"ok","notes":{"x":1}}`)

	set, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(set) != 3 {
		t.Fatalf("got %d scores, want 3: %v", len(set), set)
	}
	if set[AreaReadingComprehension] != 45 {
		t.Errorf("reading = %v, want 45", set[AreaReadingComprehension])
	}
	if set[AreaGrammar] != 70 {
		t.Errorf("grammar = %v, want 70", set[AreaGrammar])
	}
	if set[AreaVocabulary] != 72.5 {
		t.Errorf("vocabulary = %v, want 72.5", set[AreaVocabulary])
	}
}

func TestParse_NoNumericValues(t *testing.T) {
	set, err := Parse([]byte(`{"a":"x","b":{"score":"high"}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set, got %v", set)
	}
}

func TestParse_RejectsNonObject(t *testing.T) {
	for _, raw := range []string{`[1,2,3]`, `42`, `{"a":`} {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Errorf("Parse(%s) = nil error, want error", raw)
		}
	}
}

func TestOrdered(t *testing.T) {
	set := Set{
		"zeta":                   10,
		AreaVocabulary:           50,
		"alpha":                  20,
		AreaReadingComprehension: 60,
	}
	got := set.Ordered()
	want := []Area{AreaReadingComprehension, AreaVocabulary, "alpha", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("Ordered() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ordered()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
