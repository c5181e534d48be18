package inplace

import "strconv"

// checkboxForm renders nothing: activation toggles and commits at once
type checkboxForm struct{}

func (checkboxForm) render(*Editor, *activation) {}

func (checkboxForm) value(e *Editor, _ *activation) string {
	return strconv.FormatBool(!e.checked)
}

func (checkboxForm) commitsOnActivate() bool { return true }
