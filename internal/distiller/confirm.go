package distiller

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// confirmOverwrite asks the user before a populated destination is removed.
// "yes"/"y" confirms; anything else, EOF, or a read error declines.
func confirmOverwrite(dest string, in io.Reader, out io.Writer, log interface {
	Warnf(string, ...any)
}) bool {
	if f, ok := in.(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
		log.Warnf("stdin is not a terminal; pass --yes to skip the overwrite prompt")
	}
	fmt.Fprintf(out, "\nWARNING: Destination directory exists: %s\n", dest)
	fmt.Fprint(out, "All contents will be deleted. Continue? (yes/no): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "yes" || answer == "y"
}
