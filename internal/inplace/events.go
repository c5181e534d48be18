package inplace

// Events triggered on the field element. They bubble.
const (
	EventActivate   = "best_in_place:activate"
	EventUpdate     = "best_in_place:update"
	EventSuccess    = "best_in_place:success"
	EventAbort      = "best_in_place:abort"
	EventError      = "best_in_place:error"
	EventDeactivate = "best_in_place:deactivate"

	// EventAjaxSuccess and EventAjaxError accompany success and error
	EventAjaxSuccess = "ajax:success"
	EventAjaxError   = "ajax:error"
)
