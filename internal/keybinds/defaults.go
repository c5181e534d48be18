package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)

	registerBrowseBindings(r)
	registerSearchBindings(r)
	registerEditorBindings(r)
	registerConfirmBindings(r)
	registerNavigation(r, ContextJournal)
	registerNavigation(r, ContextHelp)

	r.Register(ContextJournal, "f", ActionJournalFailed)
	r.Register(ContextJournal, "C", ActionJournalClear)
	r.RegisterMultiple(ContextJournal, []string{"esc", "q", "H"}, ActionCloseModal)
	r.RegisterMultiple(ContextHelp, []string{"esc", "q", "?"}, ActionCloseModal)

	return r
}

func registerNavigation(r *Registry, ctx Context) {
	r.RegisterMultiple(ctx, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ctx, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ctx, "pgup", ActionPageUp)
	r.Register(ctx, "pgdown", ActionPageDown)
	r.Register(ctx, "g", ActionGoToTopPrepare)
	r.RegisterMultiple(ctx, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(ctx, []string{"G", "end"}, ActionGoToBottom)
}

func registerBrowseBindings(r *Registry) {
	registerNavigation(r, ContextBrowse)
	r.Register(ContextBrowse, "q", ActionQuit)
	r.RegisterMultiple(ContextBrowse, []string{"enter", "e", " "}, ActionEdit)
	r.Register(ContextBrowse, "/", ActionSearch)
	r.Register(ContextBrowse, "esc", ActionClearSearch)
	r.Register(ContextBrowse, "y", ActionYank)
	r.Register(ContextBrowse, "w", ActionSave)
	r.Register(ContextBrowse, "r", ActionRefresh)
	r.Register(ContextBrowse, "H", ActionOpenJournal)
	r.Register(ContextBrowse, "?", ActionOpenHelp)
}

func registerSearchBindings(r *Registry) {
	r.Register(ContextSearch, "enter", ActionSubmit)
	r.Register(ContextSearch, "esc", ActionCancel)
	r.Register(ContextSearch, "up", ActionNavigateUp)
	r.Register(ContextSearch, "down", ActionNavigateDown)
}

func registerEditorBindings(r *Registry) {
	r.Register(ContextInput, "enter", ActionSubmit)
	r.Register(ContextInput, "esc", ActionCancel)
	r.Register(ContextInput, "tab", ActionBlur)

	// enter inserts a newline in the textarea
	r.Register(ContextTextarea, "ctrl+s", ActionSubmit)
	r.Register(ContextTextarea, "esc", ActionCancel)
	r.Register(ContextTextarea, "tab", ActionBlur)

	r.RegisterMultiple(ContextSelect, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextSelect, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextSelect, "enter", ActionSubmit)
	r.Register(ContextSelect, "esc", ActionCancel)
	r.Register(ContextSelect, "tab", ActionBlur)
}

func registerConfirmBindings(r *Registry) {
	r.RegisterMultiple(ContextConfirm, []string{"y", "Y"}, ActionConfirmYes)
	r.RegisterMultiple(ContextConfirm, []string{"n", "N", "esc"}, ActionConfirmNo)
}
