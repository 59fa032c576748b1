package render

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain text", "Hello, World!", "Hello, World!"},
		{"ampersand", "Tom & Jerry", "Tom &amp; Jerry"},
		{"angle brackets", "a < b > c", "a &lt; b &gt; c"},
		{"quotes", `say "hi" it's`, "say &quot;hi&quot; it&#39;s"},
		{"newline kept", "a\nb", "a\nb"},
		{"unicode", "héllo 世界", "héllo 世界"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeHTML(tt.input); got != tt.expected {
				t.Errorf("escapeHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "value", "value"},
		{"quote", `a"b`, "a&quot;b"},
		{"whitespace", "a\nb\tc\rd", "a&#10;b&#9;c&#13;d"},
		{"script", `"><script>`, "&quot;&gt;&lt;script&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeAttr(tt.input); got != tt.expected {
				t.Errorf("escapeAttr(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
