package tui

// Layout constants
const (
	SidebarMinWidth   = 32 // Field list never gets narrower
	SidebarPercent    = 40 // Share of the width given to the field list
	StatusBarHeight   = 1
	PanelBorderWidth  = 2 // Left + right or top + bottom border
	ModalWidthMargin  = 6
	ModalHeightMargin = 3

	// Editor component sizes
	TextareaMaxHeight = 12
	InputCharLimit    = 0 // No limit

	// Journal viewer
	JournalPageSize = 200 // Entries loaded per refresh
)
