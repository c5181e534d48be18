package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal   Context = "global"   // Available everywhere
	ContextBrowse   Context = "browse"   // Field list
	ContextSearch   Context = "search"   // Fuzzy field filter input
	ContextInput    Context = "input"    // Single-line field editor
	ContextTextarea Context = "textarea" // Multi-line field editor
	ContextSelect   Context = "select"   // Collection picker
	ContextConfirm  Context = "confirm"  // Discard-changes prompt
	ContextJournal  Context = "journal"  // Update journal viewer
	ContextHelp     Context = "help"     // Help viewer
)

// Contexts lists every built-in context
var Contexts = []Context{
	ContextGlobal, ContextBrowse, ContextSearch, ContextInput,
	ContextTextarea, ContextSelect, ContextConfirm, ContextJournal, ContextHelp,
}

const (
	// Global actions
	ActionQuit      Action = "quit"
	ActionQuitForce Action = "quit_force"

	// Navigation actions
	ActionNavigateUp     Action = "navigate_up"
	ActionNavigateDown   Action = "navigate_down"
	ActionPageUp         Action = "page_up"
	ActionPageDown       Action = "page_down"
	ActionGoToTop        Action = "go_to_top"
	ActionGoToBottom     Action = "go_to_bottom"
	ActionGoToTopPrepare Action = "go_to_top_prepare" // First 'g' in 'gg'

	// Field list actions
	ActionEdit        Action = "edit"         // Activate the selected field
	ActionBlur        Action = "blur"         // Move focus away from the open editor
	ActionSearch      Action = "search"       // Open the fuzzy filter
	ActionClearSearch Action = "clear_search" // Drop the fuzzy filter
	ActionYank        Action = "yank"         // Copy the field value to the clipboard
	ActionSave        Action = "save"         // Write the document
	ActionRefresh     Action = "refresh"      // Re-read field summaries

	// Editor actions
	ActionSubmit Action = "submit"
	ActionCancel Action = "cancel"

	// Confirm prompt actions
	ActionConfirmYes Action = "confirm_yes"
	ActionConfirmNo  Action = "confirm_no"

	// Viewers
	ActionOpenJournal   Action = "open_journal"
	ActionOpenHelp      Action = "open_help"
	ActionCloseModal    Action = "close_modal"
	ActionJournalFailed Action = "journal_failed" // Toggle failed-only entries
	ActionJournalClear  Action = "journal_clear"

	ActionNoOp Action = "noop"
)

// ActionInfo contains metadata about an action
type ActionInfo struct {
	Action      Action
	Description string
	Category    string
}

var actionInfos = map[Action]ActionInfo{
	ActionQuit:          {ActionQuit, "Quit", "Global"},
	ActionQuitForce:     {ActionQuitForce, "Force quit", "Global"},
	ActionNavigateUp:    {ActionNavigateUp, "Move up", "Navigation"},
	ActionNavigateDown:  {ActionNavigateDown, "Move down", "Navigation"},
	ActionPageUp:        {ActionPageUp, "Page up", "Navigation"},
	ActionPageDown:      {ActionPageDown, "Page down", "Navigation"},
	ActionGoToTop:       {ActionGoToTop, "Go to top", "Navigation"},
	ActionGoToBottom:    {ActionGoToBottom, "Go to bottom", "Navigation"},
	ActionEdit:          {ActionEdit, "Edit field", "Fields"},
	ActionBlur:          {ActionBlur, "Click away", "Fields"},
	ActionSearch:        {ActionSearch, "Filter fields", "Fields"},
	ActionClearSearch:   {ActionClearSearch, "Clear filter", "Fields"},
	ActionYank:          {ActionYank, "Copy value", "Fields"},
	ActionSave:          {ActionSave, "Write document", "Fields"},
	ActionRefresh:       {ActionRefresh, "Refresh", "Fields"},
	ActionSubmit:        {ActionSubmit, "Submit", "Editor"},
	ActionCancel:        {ActionCancel, "Cancel", "Editor"},
	ActionConfirmYes:    {ActionConfirmYes, "Discard changes", "Confirm"},
	ActionConfirmNo:     {ActionConfirmNo, "Keep editing", "Confirm"},
	ActionOpenJournal:   {ActionOpenJournal, "Update journal", "Viewers"},
	ActionOpenHelp:      {ActionOpenHelp, "Help", "Viewers"},
	ActionCloseModal:    {ActionCloseModal, "Close", "Viewers"},
	ActionJournalFailed: {ActionJournalFailed, "Only failed updates", "Viewers"},
	ActionJournalClear:  {ActionJournalClear, "Clear journal", "Viewers"},
}

// GetActionInfo returns human-readable information about an action
func GetActionInfo(action Action) ActionInfo {
	if info, ok := actionInfos[action]; ok {
		return info
	}
	return ActionInfo{action, string(action), "Unknown"}
}

// IsKnownAction reports whether action is built in
func IsKnownAction(action Action) bool {
	_, ok := actionInfos[action]
	return ok || action == ActionGoToTopPrepare || action == ActionNoOp
}
