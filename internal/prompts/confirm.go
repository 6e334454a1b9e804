package prompts

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm asks a yes/no question; anything but y/yes is a no
func Confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "⚠ %s\n", question)
	fmt.Fprint(out, "Are you sure? [y/N]: ")

	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
