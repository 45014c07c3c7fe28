package display

import (
	"fmt"
	"io"
)

const banner = `  ___         _           _      _           _
 / __|___ _ _| |_ __ _ __| |_ __| |_  ___ __| |_
| (__/ _ \ ' \  _/ _` + "`" + ` / _|  _(_-< ' \/ -_) -_)  _|
 \___\___/_||_\__\__,_\__|\__/__/_||_\___\___|\__|
`

// PrintBanner writes the ASCII art banner to w, in magenta when color is on.
func PrintBanner(w io.Writer, color bool) {
	if color {
		fmt.Fprint(w, "\033[1;95m")
	}
	fmt.Fprint(w, banner)
	if color {
		fmt.Fprintln(w, "\033[0m")
	}
}
