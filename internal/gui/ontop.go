package gui

import (
	"errors"

	"fyne.io/fyne/v2"
)

// onTopSetter is the driver extension some window implementations expose
// for the always-on-top window-manager hint.
type onTopSetter interface {
	SetOnTop(bool)
}

// RequestAlwaysOnTop asks the window manager to keep the window above
// others in stacking order. The hint is cosmetic and not supported by
// every driver; callers are expected to discard the error.
func RequestAlwaysOnTop(w fyne.Window) error {
	if w == nil {
		return errors.New("no window")
	}
	if setter, ok := w.(onTopSetter); ok {
		setter.SetOnTop(true)
		return nil
	}
	return errors.New("window driver does not support the always-on-top hint")
}
