package cdp

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp/kb"
)

// namedKeys maps DOM key names to the runes chromedp.KeyEvent understands.
var namedKeys = map[string]string{
	"Enter":      kb.Enter,
	"Tab":        kb.Tab,
	"Backspace":  kb.Backspace,
	"Delete":     kb.Delete,
	"Escape":     kb.Escape,
	"Insert":     kb.Insert,
	"Home":       kb.Home,
	"End":        kb.End,
	"PageUp":     kb.PageUp,
	"PageDown":   kb.PageDown,
	"ArrowUp":    kb.ArrowUp,
	"ArrowDown":  kb.ArrowDown,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowRight": kb.ArrowRight,
	"F1":         kb.F1,
	"F2":         kb.F2,
	"F3":         kb.F3,
	"F4":         kb.F4,
	"F5":         kb.F5,
	"F6":         kb.F6,
	"F7":         kb.F7,
	"F8":         kb.F8,
	"F9":         kb.F9,
	"F10":        kb.F10,
	"F11":        kb.F11,
	"F12":        kb.F12,
	"Space":      " ",
}

var modifierKeys = map[string]input.Modifier{
	"shift":         input.ModifierShift,
	"control":       input.ModifierCtrl,
	"ctrl":          input.ModifierCtrl,
	"controlormeta": input.ModifierCtrl,
	"alt":           input.ModifierAlt,
	"option":        input.ModifierAlt,
	"meta":          input.ModifierMeta,
	"command":       input.ModifierMeta,
	"cmd":           input.ModifierMeta,
}

// parseKey parses a key description such as "Enter", "a" or "Control+A"
// into the key sequence and modifiers for chromedp.KeyEvent.
func parseKey(combo string) (string, input.Modifier, error) {
	if combo == "" {
		return "", 0, fmt.Errorf("empty key")
	}

	parts := strings.Split(combo, "+")
	// "Shift++" and "+" name the plus key itself.
	if strings.HasSuffix(combo, "++") || combo == "+" {
		parts = append(strings.Split(strings.TrimSuffix(combo, "++"), "+"), "+")
		if combo == "+" {
			parts = []string{"+"}
		}
	}

	var mods input.Modifier
	for _, m := range parts[:len(parts)-1] {
		mod, ok := modifierKeys[strings.ToLower(strings.TrimSpace(m))]
		if !ok {
			return "", 0, fmt.Errorf("unknown modifier %q in key %q", m, combo)
		}
		mods |= mod
	}

	key := parts[len(parts)-1]
	if named, ok := namedKeys[key]; ok {
		return named, mods, nil
	}
	if utf8.RuneCountInString(key) == 1 {
		return key, mods, nil
	}
	return "", 0, fmt.Errorf("unknown key %q", key)
}
