package humanoid

import (
	"context"
	"fmt"
	"strings"
)

// commonNgrams are typed in a faster rhythm than arbitrary pairs.
var commonNgrams = map[string]bool{
	"th": true, "he": true, "in": true, "er": true, "an": true, "re": true,
	"es": true, "on": true, "st": true, "nt": true,
	"the": true, "and": true, "ing": true, "ion": true,
}

const ngramSpeedup = 0.75

// Type enters text into the focused element one character at a time, with
// key hold and inter-key timing drawn from the configured distributions.
func (h *Humanoid) Type(ctx context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	runes := []rune(text)
	for i, r := range runes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			if err := h.interKeyPause(ctx, runes, i); err != nil {
				return err
			}
		}
		if err := h.executor.SendKeys(ctx, string(r)); err != nil {
			return fmt.Errorf("humanoid: failed to send key '%c': %w", r, err)
		}
		if err := h.pause(ctx, h.cfg.KeyHoldMeanMs, h.cfg.KeyHoldStdDevMs, 20); err != nil {
			return err
		}
	}
	return nil
}

// interKeyPause waits before typing runes[i]. Word boundaries take longer.
// Assumes h.mu is held.
func (h *Humanoid) interKeyPause(ctx context.Context, runes []rune, i int) error {
	mean := h.cfg.InterKeyMeanMs
	std := h.cfg.InterKeyStdDevMs

	switch {
	case runes[i-1] == ' ':
		mean *= 1.8
	case isCommonNgram(runes, i):
		mean *= ngramSpeedup
	}
	return h.pause(ctx, mean, std, 15)
}

func isCommonNgram(runes []rune, i int) bool {
	if i >= 2 && commonNgrams[strings.ToLower(string(runes[i-2:i+1]))] {
		return true
	}
	return commonNgrams[strings.ToLower(string(runes[i-1:i+1]))]
}
