// Package extract talks to the transcription/extraction collaborator: it
// ships a finished audio payload and gets back the structured expense
// fields understood from the utterance.
package extract

import (
	"context"
	"slices"

	"voxpense/capture"
)

// Languages the collaborator accepts spoken input in.
var Languages = []string{"az", "en", "ru", "tr"}

func SupportedLanguage(lang string) bool {
	return slices.Contains(Languages, lang)
}

// Result is a successful extraction.
type Result struct {
	Amount          float64
	Merchant        string
	Category        string
	TranscribedText string
}

// SemanticError is a well-formed reply that carries no usable extraction
// ("could not understand speech"), as opposed to a transport failure. The
// message is server-provided and shown to the user as-is.
type SemanticError struct {
	Code    string
	Message string
}

func (e *SemanticError) Error() string {
	return e.Message
}

type Extractor interface {
	Name() string
	Extract(ctx context.Context, p capture.Payload, lang string) (*Result, error)
}
