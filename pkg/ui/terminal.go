package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔═════════════════════════════════════════════════════════════════════╗
    ║ ██╗ ██████╗      █████╗ ███╗   ██╗ █████╗ ██╗  ██╗   ██╗███████╗███████╗ ║
    ║ ██║██╔════╝     ██╔══██╗████╗  ██║██╔══██╗██║  ╚██╗ ██╔╝╚══███╔╝██╔════╝ ║
    ║ ██║██║  ███╗    ███████║██╔██╗ ██║███████║██║   ╚████╔╝   ███╔╝ █████╗   ║
    ║ ██║██║   ██║    ██╔══██║██║╚██╗██║██╔══██║██║    ╚██╔╝   ███╔╝  ██╔══╝   ║
    ║ ██║╚██████╔╝    ██║  ██║██║ ╚████║██║  ██║███████╗██║   ███████╗███████╗ ║
    ║ ╚═╝ ╚═════╝     ╚═╝  ╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝╚══════╝╚═╝   ╚══════╝╚══════╝ ║
    ║            ENGAGEMENT & POSTING PATTERN ANALYTICS                      ║
    ╚═════════════════════════════════════════════════════════════════════╝
`

var (
	out          io.Writer = os.Stdout
	colorEnabled           = isTerminal(os.Stdout)
	quiet        bool
)

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SetOutput redirects terminal output. Colors are enabled only when w is a
// terminal.
func SetOutput(w io.Writer) {
	out = w
	f, ok := w.(*os.File)
	colorEnabled = ok && isTerminal(f)
}

// SetColorEnabled forces colored output on or off
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// ColorEnabled reports whether ANSI colors are written
func ColorEnabled() bool {
	return colorEnabled
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(q bool) {
	quiet = q
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if quiet {
		return
	}
	fmt.Fprint(out, Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(out, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(out, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if quiet {
		return
	}
	fmt.Fprintln(out, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	if quiet {
		return
	}
	fmt.Fprintf(out, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if quiet {
		return
	}
	if len(args) > 0 {
		fmt.Fprintln(out, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(out, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if quiet {
		return
	}
	fmt.Fprintln(out, Magenta(msg))
}
