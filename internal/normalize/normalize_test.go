package normalize

import "testing"

func TestLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Overview ... 12", "Overview"},
		{"3.2.1", ""},
		{"Introduction .......... 4", "Introduction"},
		{"2. Background .......... 3", "2. Background"},
		{"Scope", "Scope"},
		{"  Scope  ", "Scope"},
		{"", ""},
		{"...", ""},
		{"Results . . . . 17", "Results"},
		{"Appendix 12 . 4", "Appendix"},
		{"Deﬁnitions ........ ７", "Definitions"},
		{"Intro\v4", "Intro"},
	}
	for _, tt := range tests {
		if got := Label(tt.in); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLabel_Idempotent(t *testing.T) {
	inputs := []string{
		"Overview ... 12",
		"3.2.1",
		"2. Background .......... 3",
		"Terms and conditions",
		" 7 ",
		"Intro\v4",
		"a.b.c 1 . 2 .",
		"Stage 2 ",
		"ﬁnal .. ",
	}
	for _, in := range inputs {
		once := Label(in)
		if twice := Label(once); twice != once {
			t.Errorf("Label not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("a \t b\n\nc"); got != "a b c" {
		t.Errorf("CollapseSpace = %q", got)
	}
	if got := CollapseSpace("a  b"); got != "a b" {
		t.Errorf("CollapseSpace with nbsp = %q", got)
	}
}

func TestStripDotsAndSpace(t *testing.T) {
	if got := StripDotsAndSpace("2.1. Data  model"); got != "21Datamodel" {
		t.Errorf("StripDotsAndSpace = %q", got)
	}
}

func TestHasLeader(t *testing.T) {
	tests := map[string]bool{
		"7. Golf ............................. 10": true,
		"Glossary . . . . 12":                      true,
		"Appendix…… 3":                             true,
		"7. Golf":                                  false,
		"Revenue grew in 2020":                     false,
		"Wait... 5 minutes":                        false,
		"Body of Golf.":                            false,
	}
	for in, want := range tests {
		if got := HasLeader(in); got != want {
			t.Errorf("HasLeader(%q) = %v, want %v", in, got, want)
		}
	}
}
