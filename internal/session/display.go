package session

import (
	"fmt"
	"io"
	"text/tabwriter"

	"option-live/internal/model"
	"option-live/internal/render"
)

// WriteDisplay prints st as an aligned table. Greeks absent from the page are skipped.
func WriteDisplay(w io.Writer, seq uint64, st render.DisplayState) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#%d\tcall\t%s\tput\t%s\n", seq, orDash(st.CallPrice), orDash(st.PutPrice))
	for i := 0; i+1 < len(model.GreekNames); i += 2 {
		a, b := model.GreekNames[i], model.GreekNames[i+1]
		va, oka := st.Greeks[a]
		vb, okb := st.Greeks[b]
		if !oka && !okb {
			continue
		}
		fmt.Fprintf(tw, "\t%s\t%s\t%s\t%s\n", a, orDash(va), b, orDash(vb))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
