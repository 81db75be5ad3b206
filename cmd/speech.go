// File: cmd/speech.go
package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

var speakFlag bool

// speak reads text aloud through the configured speech program, e.g.
// `espeak -v en-us -s 122 -p 15 "STOPPED"`. The defaults give a slow,
// low robot voice.
func speak(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	s := cfg.Speech
	args := []string{
		"-v", s.Voice,
		"-s", strconv.Itoa(s.Rate),
		"-p", strconv.Itoa(s.Pitch),
		text,
	}
	output, err := cmdExecutor.Execute(s.Command, args...)
	if err != nil {
		return fmt.Errorf("speech: %s failed: %w: %s", s.Command, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// speakResponse voices a successful reply. Failures are logged only; the
// reply has already been displayed.
func speakResponse(text string) {
	if !speakFlag {
		return
	}
	if err := speak(text); err != nil {
		log.Warn("speech failed", "error", err)
	}
}
