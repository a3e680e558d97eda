package keybinds

import "testing"

func TestDefaultRegistry_StableKeySurface(t *testing.T) {
	r := NewDefaultRegistry()

	cases := []struct {
		context Context
		key     string
		want    Action
	}{
		{ContextBrowsing, "q", ActionQuit},
		{ContextBrowsing, "u", ActionEnterUsername},
		{ContextBrowsing, "f1", ActionHelp},
		{ContextBrowsing, "down", ActionSelectNext},
		{ContextBrowsing, "up", ActionSelectPrev},
		{ContextBrowsing, "pgdown", ActionPageForward},
		{ContextBrowsing, "pgup", ActionPageBackward},
		{ContextBrowsing, "tab", ActionCycleCategory},
		{ContextModal, "c", ActionClose},
		{ContextPrompt, "enter", ActionSubmit},
		{ContextPrompt, "esc", ActionClose},
	}

	for _, tc := range cases {
		action, ok := r.Match(tc.context, tc.key)
		if !ok {
			t.Errorf("Match(%s, %q): no binding", tc.context, tc.key)
			continue
		}
		if action != tc.want {
			t.Errorf("Match(%s, %q) = %q, want %q", tc.context, tc.key, action, tc.want)
		}
	}
}

func TestMatch_GlobalFallback(t *testing.T) {
	r := NewDefaultRegistry()

	for _, context := range []Context{ContextBrowsing, ContextModal, ContextPrompt} {
		action, ok := r.Match(context, "ctrl+c")
		if !ok || action != ActionQuit {
			t.Errorf("ctrl+c in %s = (%q, %v), want global quit", context, action, ok)
		}
	}
}

func TestMatch_PromptDoesNotStealPrintableKeys(t *testing.T) {
	r := NewDefaultRegistry()

	// 'q', 'u' and 'c' must remain typeable inside the username prompt.
	for _, key := range []string{"q", "u", "c"} {
		if action, ok := r.Match(ContextPrompt, key); ok {
			t.Errorf("prompt context binds %q to %q; printable keys must pass through", key, action)
		}
	}
}

func TestMatch_UnboundKey(t *testing.T) {
	r := NewDefaultRegistry()

	if _, ok := r.Match(ContextBrowsing, "ctrl+z"); ok {
		t.Error("unbound key should not match")
	}
}
