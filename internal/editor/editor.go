// Package editor models the inline location-name field: a read-only label that
// turns into a text input on click and back into a label on blur or Enter.
package editor

// Mode is the display phase of the field.
type Mode int

const (
	// Label shows the value as read-only text.
	Label Mode = iota
	// Input shows an editable, focused text field.
	Input
)

// View is what the field should render right now.
type View struct {
	Mode  Mode
	Value string
}

// Editor holds only the transient focus state. The caller owns the value and
// learns about every change through onChange.
type Editor struct {
	value    string
	initial  string
	focused  bool
	onChange func(string)
	onCommit func(string)
}

// New creates an editor showing value. initial is restored whenever the user
// leaves the field empty.
func New(value, initial string, onChange func(string)) *Editor {
	if onChange == nil {
		onChange = func(string) {}
	}
	return &Editor{value: value, initial: initial, onChange: onChange}
}

// OnCommit registers fn to receive the final value each time edit mode ends.
func (e *Editor) OnCommit(fn func(string)) *Editor {
	e.onCommit = fn
	return e
}

// SetValue syncs the editor with the caller-owned value without firing callbacks.
func (e *Editor) SetValue(v string) {
	e.value = v
}

// Value returns the current value.
func (e *Editor) Value() string {
	return e.value
}

// Focused reports whether the field is in edit mode.
func (e *Editor) Focused() bool {
	return e.focused
}

// View returns the current display state.
func (e *Editor) View() View {
	if e.focused {
		return View{Mode: Input, Value: e.value}
	}
	return View{Mode: Label, Value: e.value}
}

// Click enters edit mode.
func (e *Editor) Click() {
	e.focused = true
}

// Input handles a keystroke that changed the text. Ignored outside edit mode.
func (e *Editor) Input(v string) {
	if !e.focused {
		return
	}
	e.value = v
	e.onChange(v)
}

// KeyDown handles a key press; Enter leaves edit mode.
func (e *Editor) KeyDown(key string) {
	if key == "Enter" {
		e.Blur()
	}
}

// Blur leaves edit mode, restoring the initial value if the field was cleared.
// It is a no-op when the field is not focused, so Enter followed by the input's
// own blur event commits once.
func (e *Editor) Blur() {
	if !e.focused {
		return
	}
	e.focused = false
	if e.value == "" {
		e.value = e.initial
		e.onChange(e.initial)
	}
	if e.onCommit != nil {
		e.onCommit(e.value)
	}
}

// Commit runs a complete edit (click, type v, blur) and returns the committed value.
func Commit(current, initial, v string) string {
	e := New(current, initial, nil)
	e.Click()
	e.Input(v)
	e.Blur()
	return e.Value()
}
