// Package keybinds resolves raw key strings to application actions through
// a context-aware registry, keeping the stable key surface in one place
// instead of scattered through the update loop.
package keybinds

// Action represents a user action that can be triggered by a keybinding.
type Action string

// Context represents the context in which keybindings are active.
type Context string

const (
	// ContextGlobal bindings are available everywhere.
	ContextGlobal Context = "global"
	// ContextBrowsing applies while browsing subresources.
	ContextBrowsing Context = "browsing"
	// ContextModal applies while a non-text modal (help, inspect) is open.
	ContextModal Context = "modal"
	// ContextPrompt applies while the username prompt captures text.
	ContextPrompt Context = "prompt"
)

const (
	ActionQuit          Action = "quit"
	ActionClose         Action = "close"
	ActionEnterUsername Action = "enter_username"
	ActionHelp          Action = "help"
	ActionInspect       Action = "inspect"
	ActionYank          Action = "yank"
	ActionSelectNext    Action = "select_next"
	ActionSelectPrev    Action = "select_previous"
	ActionPageForward   Action = "page_forward"
	ActionPageBackward  Action = "page_backward"
	ActionCycleCategory Action = "cycle_category"
	ActionSubmit        Action = "submit"
)

// Registry manages keybinding mappings and matching.
type Registry struct {
	// bindings maps context -> key -> action
	bindings map[Context]map[string]Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[Context]map[string]Action)}
}

// Register adds a keybinding to the registry.
func (r *Registry) Register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

// RegisterMultiple registers multiple keys for the same action.
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// Match resolves a key to an action in the given context, falling back to
// the global context. The second return reports whether a mapping exists.
func (r *Registry) Match(context Context, key string) (Action, bool) {
	if contextBindings, ok := r.bindings[context]; ok {
		if action, ok := contextBindings[key]; ok {
			return action, true
		}
	}

	if globalBindings, ok := r.bindings[ContextGlobal]; ok {
		if action, ok := globalBindings[key]; ok {
			return action, true
		}
	}

	return "", false
}

// NewDefaultRegistry creates a registry with the default keymap. The stable
// key surface: q quit, u enter username, c close, f1 help, arrows move the
// selection, pgup/pgdown change the page, tab cycles the category.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ContextGlobal, "ctrl+c", ActionQuit)

	r.Register(ContextBrowsing, "q", ActionQuit)
	r.Register(ContextBrowsing, "u", ActionEnterUsername)
	r.Register(ContextBrowsing, "f1", ActionHelp)
	r.Register(ContextBrowsing, "i", ActionInspect)
	r.Register(ContextBrowsing, "y", ActionYank)
	r.RegisterMultiple(ContextBrowsing, []string{"down", "j"}, ActionSelectNext)
	r.RegisterMultiple(ContextBrowsing, []string{"up", "k"}, ActionSelectPrev)
	r.Register(ContextBrowsing, "pgdown", ActionPageForward)
	r.Register(ContextBrowsing, "pgup", ActionPageBackward)
	r.Register(ContextBrowsing, "tab", ActionCycleCategory)

	r.RegisterMultiple(ContextModal, []string{"c", "esc"}, ActionClose)
	r.Register(ContextModal, "q", ActionQuit)
	r.RegisterMultiple(ContextModal, []string{"down", "j"}, ActionSelectNext)
	r.RegisterMultiple(ContextModal, []string{"up", "k"}, ActionSelectPrev)

	// The prompt captures printable keys for text entry, so only control
	// keys map to actions here.
	r.Register(ContextPrompt, "esc", ActionClose)
	r.Register(ContextPrompt, "enter", ActionSubmit)
	r.Register(ContextPrompt, "down", ActionSelectNext)
	r.Register(ContextPrompt, "up", ActionSelectPrev)

	return r
}
