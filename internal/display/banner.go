package display

import (
	"fmt"
	"io"

	"github.com/backmassage/doppelrender/internal/term"
)

const banner = `     _                         _                    _
  __| | ___  _ __  _ __   ___| |_ __ ___ _ __   __| | ___ _ __
 / _` + "`" + ` |/ _ \| '_ \| '_ \ / _ \ | '__/ _ \ '_ \ / _` + "`" + ` |/ _ \ '__|
| (_| | (_) | |_) | |_) |  __/ | | |  __/ | | | (_| |  __/ |
 \__,_|\___/| .__/| .__/ \___|_|_|  \___|_| |_|\__,_|\___|_|
            |_|   |_|
`

// PrintBanner writes the ASCII art banner to w, in magenta when colors are on.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Paint(term.Magenta, banner))
	if term.Enabled() {
		fmt.Fprintln(w)
	}
}
