package app

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/gookit/color"
	"github.com/vk/scriptvars/internal/registry"
)

// Dump prints every variable and event of every registry. Names are colored
// when w is a color-capable terminal.
func (a *App) Dump(w io.Writer) error {
	paint := plain
	if f, ok := w.(*os.File); ok && f == os.Stdout && color.SupportColor() {
		paint = func(c color.Color, s string) string { return c.Sprint(s) }
	}

	for i, reg := range a.registries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := dumpRegistry(w, reg, a.statePaths[reg.Name()], paint); err != nil {
			return err
		}
	}
	return nil
}

func plain(_ color.Color, s string) string { return s }

func dumpRegistry(w io.Writer, reg *registry.Registry, path string, paint func(color.Color, string) string) error {
	fmt.Fprintf(w, "%s %s\n", paint(color.Cyan, reg.Name()), paint(color.Gray, "("+path+")"))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range reg.Entries() {
		text, err := e.EncodeValue()
		if err != nil {
			text = paint(color.Red, "<"+err.Error()+">")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", paint(color.Green, e.Name()), e.Kind(), text)
	}
	for _, ev := range reg.Events() {
		fmt.Fprintf(tw, "  %s\t%s\t\n", paint(color.Yellow, ev.Name()), "Event")
	}
	return tw.Flush()
}
