package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PromptForReference asks for a gemstone reference on out and reads one line
// from in. An empty answer is returned as "".
func PromptForReference(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Référence: ")

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", fmt.Errorf("failed to read reference: %w", err)
	}
	return strings.TrimSpace(input), nil
}
