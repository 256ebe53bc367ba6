package main

import (
	"fmt"
	"os"
	"strings"
)

// progressMode is the --ui setting of check.
type progressMode string

const (
	progressAuto progressMode = "auto"
	progressOn   progressMode = "on"
	progressOff  progressMode = "off"
)

func parseProgressMode(value string) (progressMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return progressAuto, nil
	case "on":
		return progressOn, nil
	case "off":
		return progressOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// showProgress decides whether check draws the per-file progress view.
// Machine-readable formats never share stdout with it. In auto mode the
// view needs a terminal and no --quiet.
func (m progressMode) showProgress(format string, quiet, tty bool) bool {
	if format != "pretty" {
		return false
	}
	switch m {
	case progressOn:
		return true
	case progressOff:
		return false
	default:
		return tty && !quiet
	}
}

func stdoutIsTerminal() bool {
	return isTerminal(os.Stdout)
}
