package loader

import (
	"fmt"

	"github.com/lu4p/cat"
)

// extractOffice reads .docx, .odt and .rtf files.
func extractOffice(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	return text, nil
}
