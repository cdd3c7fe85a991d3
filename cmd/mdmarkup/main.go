package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ahmadov/tabris-markdown/internal/markup"
	"github.com/ahmadov/tabris-markdown/internal/source"
	"github.com/ahmadov/tabris-markdown/internal/transducer"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/version"
)

const defaultWidth = 80

func init() {
	version.SetDefaultModule("github.com/ahmadov/tabris-markdown")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		mode         string
		headingBreak string
		widthFlag    int
		quiet        bool
		showVersion  bool
	)

	flags := pflag.NewFlagSet("mdmarkup", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&mode, "mode", "m", "markup", "Output: markup|events|plain|links")
	flags.StringVar(&headingBreak, "heading-break", "raw", "Line break after headings: raw|always")
	flags.IntVarP(&widthFlag, "width", "w", 0, "Wrap width for plain output (0 uses terminal width if available)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress unrecognized token diagnostics")
	flags.BoolVar(&showVersion, "version", false, "Print version and exit")
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: mdmarkup [flags] [input]\n")
		fmt.Fprintln(stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}
	if showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}
	if flags.NArg() > 1 {
		fmt.Fprintln(stderr, "at most one input may be given")
		return 2
	}

	policy, err := transducer.ParseHeadingBreak(headingBreak)
	if err != nil {
		fmt.Fprintf(stderr, "invalid --heading-break: %v\n", err)
		return 2
	}

	src, err := readInput(flags.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "read input: %v\n", err)
		return 1
	}

	level := slog.LevelWarn
	if quiet {
		level = slog.LevelError
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	tr := transducer.Parse(src, transducer.WithLogger(log), transducer.WithHeadingBreak(policy))

	switch mode {
	case "markup":
		fmt.Fprintln(stdout, tr.Render())
	case "events":
		writeEvents(stdout, tr)
	case "plain":
		text, err := markup.PlainText(tr.Render())
		if err != nil {
			fmt.Fprintf(stderr, "plain text: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, wordwrap.String(text, resolveWidth(widthFlag)))
	case "links":
		links, err := markup.Links(tr.Render())
		if err != nil {
			fmt.Fprintf(stderr, "links: %v\n", err)
			return 1
		}
		for _, l := range links {
			fmt.Fprintln(stdout, l)
		}
	default:
		fmt.Fprintf(stderr, "unknown --mode %q\n", mode)
		return 2
	}
	return 0
}

// readInput loads the single input file through its source loader, or reads
// markdown from stdin when no file is given.
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	path := args[0]
	loader, err := source.ForFile(path)
	if err != nil {
		return "", err
	}
	if pdf, ok := loader.(*source.PDFLoader); ok {
		pdf.FallbackPdftotext = true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return loader.Load(bytes.NewReader(data), path)
}

// writeEvents prints one event per line in the "<BEGIN type>" notation.
// Text values are quoted so that line feeds stay on one line.
func writeEvents(w io.Writer, tr *transducer.Transducer) {
	l := &transducer.Listeners{}
	l.OnBegin(func(e transducer.Event) {
		var attrs []string
		if e.Depth > 0 {
			attrs = append(attrs, "depth="+strconv.Itoa(e.Depth))
		}
		if e.Href != "" {
			attrs = append(attrs, "href="+strconv.Quote(e.Href))
		}
		if len(attrs) == 0 {
			fmt.Fprintln(w, e.String())
			return
		}
		fmt.Fprintf(w, "<BEGIN %s %s>\n", e.Type, strings.Join(attrs, " "))
	}).OnText(func(e transducer.Event) {
		fmt.Fprintln(w, strconv.Quote(e.Value))
	}).OnEnd(func(e transducer.Event) {
		fmt.Fprintln(w, e.String())
	})
	tr.Emit(l)
}

func resolveWidth(width int) int {
	if width > 0 {
		return width
	}
	return terminalWidth(defaultWidth)
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}
