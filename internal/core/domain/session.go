package domain

import "fmt"

// Mode selects which pipeline handles the next user message.
type Mode string

const (
	ModeDefaultPersona   Mode = "default_persona"
	ModeAlternatePersona Mode = "alternate_persona"
	ModeDocumentGrounded Mode = "document_grounded"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeDefaultPersona, ModeAlternatePersona, ModeDocumentGrounded:
		return Mode(raw), nil
	default:
		return "", WrapError(ErrInvalidInput, "parse mode", fmt.Errorf("unknown mode %q", raw))
	}
}
