package keymap

import "testing"

func TestDefaults_LoadAndValidate(t *testing.T) {
	b := Defaults()
	if len(b) == 0 {
		t.Fatal("embedded defaults are empty")
	}
	if err := Validate(b); err != nil {
		t.Fatalf("embedded defaults conflict: %v", err)
	}
	if chords := b["undo"]; len(chords) == 0 {
		t.Error("undo has no default binding")
	}
}

func TestMerge_OverridesReplaceWholesale(t *testing.T) {
	merged := Merge(Defaults(), map[string][]string{
		"undo":   {"ctrl+shift+z"},
		"custom": {"f5"},
	})

	if got := merged["undo"]; len(got) != 1 || got[0] != "ctrl+shift+z" {
		t.Errorf("undo = %v, want the override only", got)
	}
	if got := merged["custom"]; len(got) != 1 || got[0] != "f5" {
		t.Errorf("unknown actions must carry through: %v", got)
	}
	if len(merged["quit"]) == 0 {
		t.Error("untouched defaults vanished")
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	defaults := Bindings{"quit": {"q"}}
	merged := Merge(defaults, nil)
	merged["quit"][0] = "x"
	if defaults["quit"][0] != "q" {
		t.Error("merge aliased the defaults slice")
	}
}

func TestValidate_DetectsDuplicateChord(t *testing.T) {
	err := Validate(Bindings{
		"save":   {"ctrl+s"},
		"search": {"Ctrl+S"},
	})
	if err == nil {
		t.Fatal("Validate() accepted one chord bound to two actions")
	}
}

func TestValidate_ModifierOrderInsensitive(t *testing.T) {
	err := Validate(Bindings{
		"a": {"ctrl+shift+p"},
		"b": {"shift+ctrl+p"},
	})
	if err == nil {
		t.Fatal("Validate() missed a modifier-reordered duplicate")
	}
}

func TestValidate_EmptyChord(t *testing.T) {
	if err := Validate(Bindings{"a": {""}}); err == nil {
		t.Error("Validate() accepted an empty chord")
	}
}

func TestNormalizeChord(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ctrl+Z", "ctrl+z"},
		{"shift+ctrl+p", "ctrl+shift+p"},
		{" q ", "q"},
		{"enter", "enter"},
	}
	for _, tt := range tests {
		if got := NormalizeChord(tt.in); got != tt.want {
			t.Errorf("NormalizeChord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	b := Bindings{"undo": {"ctrl+z", "u"}}

	if action, ok := Lookup(b, "CTRL+Z"); !ok || action != "undo" {
		t.Errorf("Lookup = %q, %v", action, ok)
	}
	if _, ok := Lookup(b, "f12"); ok {
		t.Error("Lookup matched an unbound chord")
	}
}
