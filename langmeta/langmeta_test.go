package langmeta

import "testing"

func TestName_KnownCodes(t *testing.T) {
	if got := Name("pt"); got != "Português (Brasil)" {
		t.Errorf("Name(pt) = %q", got)
	}
	if got := Name("en"); got != "English" {
		t.Errorf("Name(en) = %q", got)
	}
}

func TestName_VariantNormalization(t *testing.T) {
	if got := Name("pt_pt"); got != "Português (Portugal)" {
		t.Errorf("Name(pt_pt) = %q", got)
	}
	// Region variants without a registry entry fall back to the base language.
	if got := Name("de-AT"); got != "Deutsch" {
		t.Errorf("Name(de-AT) = %q", got)
	}
}

func TestName_UnknownFallsBackToUppercase(t *testing.T) {
	if got := Name("xx"); got != "XX" {
		t.Errorf("Name(xx) = %q", got)
	}
}
