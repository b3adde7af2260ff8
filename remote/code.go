// Package remote carries picture-in-picture control actions from out-of-band
// buttons back into the running player.
package remote

import (
	"fmt"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
)

// Code is the integer payload of a remote action signal.
type Code int

const (
	Play Code = iota + 1
	Pause
	Forward
	Rewind
	Replay
)

// requestIDBase offsets delivery-request identifiers so every code owns a distinct one.
const requestIDBase = 100

var codeNames = map[Code]string{
	Play:    "play",
	Pause:   "pause",
	Forward: "forward",
	Rewind:  "rewind",
	Replay:  "replay",
}

// Codes returns every valid code in wire order.
func Codes() []Code {
	return []Code{Play, Pause, Forward, Rewind, Replay}
}

// Valid reports whether c is one of the five known codes.
func (c Code) Valid() bool {
	_, ok := codeNames[c]
	return ok
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(c))
}

// RequestID returns the delivery-request identifier paired with c. Distinct
// identifiers keep the host from collapsing two buttons into one pending signal.
func (c Code) RequestID() int {
	return requestIDBase + int(c)
}

// ParseCode resolves an action name or its integer form.
func ParseCode(s string) (Code, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	for code, name := range codeNames {
		if name == s || fmt.Sprint(int(code)) == s {
			return code, nil
		}
	}

	closest := lo.MinBy(lo.Values(codeNames), func(a, b string) bool {
		return levenshtein.Distance(s, a) < levenshtein.Distance(s, b)
	})
	return 0, fmt.Errorf("unknown action %q, did you mean %q?", s, closest)
}
