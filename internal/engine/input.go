package engine

import (
	"fmt"
	"time"
)

// OpKind is the logical input operation an interpreted keystroke maps to.
type OpKind int

// Logical input operations.
const (
	OpInsert OpKind = iota
	OpBackspace
	OpWordDelete
)

// Op is a normalized input event. Raw terminal input is reduced to one of
// three operations before it reaches the state machine.
type Op struct {
	Kind OpKind
	Rune rune
}

// NormalizeRune maps terminal input to the logical identity used for
// comparison. Enter arrives as carriage return and compares as newline.
func NormalizeRune(r rune) rune {
	if r == '\r' {
		return '\n'
	}
	return r
}

// Insert builds an insert operation for a typed character.
func Insert(r rune) Op {
	return Op{Kind: OpInsert, Rune: NormalizeRune(r)}
}

// Backspace builds a single-character delete operation.
func Backspace() Op {
	return Op{Kind: OpBackspace}
}

// WordDelete builds a word-delete operation.
func WordDelete() Op {
	return Op{Kind: OpWordDelete}
}

// Apply dispatches a normalized operation to the session.
func (s *Session) Apply(op Op, now time.Time) (KeystrokeResult, error) {
	switch op.Kind {
	case OpInsert:
		return s.AcceptKeystroke(op.Rune, now)
	case OpBackspace:
		return KeystrokeResult{}, s.Backspace(now)
	case OpWordDelete:
		return KeystrokeResult{}, s.WordDelete(now)
	default:
		return KeystrokeResult{}, fmt.Errorf("unknown input operation %d", op.Kind)
	}
}
