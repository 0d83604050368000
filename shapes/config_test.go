package shapes

import "testing"

func TestParseDocstringFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    DocstringFormat
		wantErr bool
	}{
		{"", DocstringFormatNone, false},
		{"none", DocstringFormatNone, false},
		{"sphinx", DocstringFormatSphinx, false},
		{"Sphinx", "", true},
		{"google", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDocstringFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDocstringFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDocstringFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSetRewriteDocstrings(t *testing.T) {
	previous := SetRewriteDocstrings(DocstringFormatNone)
	defer SetRewriteDocstrings(previous)

	if got := RewriteDocstrings(); got != DocstringFormatNone {
		t.Errorf("RewriteDocstrings() = %q, want %q", got, DocstringFormatNone)
	}
	if got := SetRewriteDocstrings(DocstringFormatSphinx); got != DocstringFormatNone {
		t.Errorf("SetRewriteDocstrings returned %q, want %q", got, DocstringFormatNone)
	}
}
