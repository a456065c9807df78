package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wit-codegen/codegen"
	"github.com/wippyai/wit-codegen/wit"
)

func main() {
	var (
		jsonFile    = flag.String("json", "", "Path to resolved WIT document (JSON), - for stdin")
		outFile     = flag.String("o", "", "Output file (default stdout)")
		runtimeMod  = flag.String("runtime", "", "Runtime module specifier for generated imports")
		list        = flag.Bool("list", false, "List packages, interfaces and worlds and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *jsonFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: witgen -json <doc.json> [-o out.ts] [-runtime module]")
		fmt.Fprintln(os.Stderr, "       witgen -json <doc.json> -list")
		fmt.Fprintln(os.Stderr, "       witgen -json <doc.json> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer l.Sync()
		codegen.SetLogger(l)
	}

	if *interactive {
		if err := runInteractive(*jsonFile, *runtimeMod); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*jsonFile, *outFile, *runtimeMod, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(jsonFile, outFile, runtimeMod string, listOnly bool) error {
	doc, err := loadDocument(jsonFile)
	if err != nil {
		return err
	}

	if listOnly {
		printSummary(os.Stdout, doc)
		return nil
	}

	out, err := codegen.Generate(doc, codegen.Options{RuntimeModule: runtimeMod})
	if err != nil {
		return err
	}

	if outFile == "" {
		_, err = io.WriteString(os.Stdout, out)
		return err
	}
	return os.WriteFile(outFile, []byte(out), 0o644)
}

func loadDocument(path string) (*wit.Document, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open document: %w", err)
		}
		defer f.Close()
		r = f
	}
	return wit.DecodeDocument(r)
}

func printSummary(w io.Writer, doc *wit.Document) {
	for _, pkg := range doc.Packages {
		fmt.Fprintf(w, "Package: %s\n", pkg.Name)
		for _, ni := range pkg.Interfaces {
			iface, err := doc.InterfaceAt(ni.Index)
			if err != nil {
				continue
			}
			var fns []string
			for _, fn := range iface.Functions {
				fns = append(fns, fn.Name)
			}
			fmt.Fprintf(w, "  interface %s (%d types)", ni.Name, len(iface.Types))
			if len(fns) > 0 {
				fmt.Fprintf(w, ": %s", strings.Join(fns, ", "))
			}
			fmt.Fprintln(w)
		}
		for _, ni := range pkg.Worlds {
			world, err := doc.WorldAt(ni.Index)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "  world %s (%d imports, %d exports)\n",
				ni.Name, len(world.Imports), len(world.Exports))
		}
	}
}
