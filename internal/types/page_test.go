package types

import (
	"errors"
	"testing"
)

// --- NormalizeTitle ---

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want PageID
	}{
		{"Moon Lord", "Moon_Lord"},
		{"Moon_Lord", "Moon_Lord"},
		{"Moon  Lord", "Moon_Lord"},
		{"  Zenith  ", "Zenith"},
		{"/wiki/Terra_Blade", "Terra_Blade"},
		{"/wiki/Mythril%20Anvil", "Mythril_Anvil"},
		{"a__b", "a_b"},
	}
	for _, tc := range cases {
		got, err := NormalizeTitle(tc.in)
		if err != nil {
			t.Errorf("NormalizeTitle(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTitleEquivalentForms(t *testing.T) {
	a, _ := NormalizeTitle("Moon Lord")
	b, _ := NormalizeTitle("/wiki/Moon_Lord")
	if a != b {
		t.Errorf("equivalent titles normalized differently: %q vs %q", a, b)
	}
}

func TestNormalizeTitleRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "___", "Page#Section", "Page?action=edit"} {
		if _, err := NormalizeTitle(in); !errors.Is(err, ErrInvalidTitle) {
			t.Errorf("NormalizeTitle(%q): expected ErrInvalidTitle, got %v", in, err)
		}
	}
}

func TestPageIDTitle(t *testing.T) {
	if got := PageID("Moon_Lord").Title(); got != "Moon Lord" {
		t.Errorf("Title() = %q, want %q", got, "Moon Lord")
	}
}

// --- Page document ---

func TestPageDocumentLazyParse(t *testing.T) {
	page := &Page{ID: "P", Body: []byte("<html><body><p>hi</p></body></html>")}

	doc, err := page.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Find("p").Text() != "hi" {
		t.Error("document did not parse body")
	}

	again, err := page.Document()
	if err != nil {
		t.Fatalf("second Document: %v", err)
	}
	if again != doc {
		t.Error("document reparsed instead of cached")
	}
}

// --- Error types ---

func TestFetchErrorUnwrap(t *testing.T) {
	err := &FetchError{ID: "Missing", StatusCode: 404, Err: ErrNotFound}
	if !errors.Is(err, ErrNotFound) {
		t.Error("FetchError did not unwrap to ErrNotFound")
	}
	if err.Error() == "" {
		t.Error("empty error string")
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := &StorageError{Backend: "json", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("StorageError did not unwrap")
	}
}
