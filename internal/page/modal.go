package page

type Key string

const (
	KeyTab      Key = "tab"
	KeyShiftTab Key = "shift+tab"
	KeyEscape   Key = "escape"
	KeyEnter    Key = "enter"
)

// RegistrationFocusables are the controls of the registration dialog in tab order.
var RegistrationFocusables = []string{"name", "email", "attendees", "submit", "close"}

type ModalView struct {
	Open         bool
	Title        string
	Focusables   []string
	Focused      string
	ScrollLocked bool
	// ReturnFocus is the control that gets focus back when the dialog closes.
	ReturnFocus string
}

// FocusTrap keeps keyboard focus inside an open dialog and hands it back to
// the control that opened it.
type FocusTrap struct {
	focusables []string
	open       bool
	index      int
	trigger    string
}

func NewFocusTrap(focusables []string) *FocusTrap {
	return &FocusTrap{focusables: focusables}
}

// Open focuses the first control and remembers trigger.
func (f *FocusTrap) Open(trigger string) {
	f.open, f.index, f.trigger = true, 0, trigger
}

// Close returns the control that should be focused next.
func (f *FocusTrap) Close() string {
	f.open = false
	return f.trigger
}

// HandleKey moves focus for Tab and Shift+Tab, wrapping at both ends.
// Escape closes the dialog. It reports whether the key was consumed.
func (f *FocusTrap) HandleKey(k Key) bool {
	if !f.open {
		return false
	}
	n := len(f.focusables)
	switch k {
	case KeyTab:
		if n > 0 {
			f.index = (f.index + 1) % n
		}
	case KeyShiftTab:
		if n > 0 {
			f.index = (f.index - 1 + n) % n
		}
	case KeyEscape:
		f.Close()
	default:
		return false
	}
	return true
}

func (f *FocusTrap) IsOpen() bool { return f.open }

func (f *FocusTrap) Focused() string {
	if !f.open || len(f.focusables) == 0 {
		return ""
	}
	return f.focusables[f.index]
}

func (f *FocusTrap) view(title string) ModalView {
	v := ModalView{
		Open:         f.open,
		Title:        title,
		Focusables:   f.focusables,
		Focused:      f.Focused(),
		ScrollLocked: f.open,
	}
	if !f.open {
		v.ReturnFocus = f.trigger
	}
	return v
}
