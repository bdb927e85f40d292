package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-qrtable"
	"github.com/alnah/go-qrtable/internal/yamlutil"
)

// listedDoc is the YAML shape of one file in list output.
type listedDoc struct {
	File string        `yaml:"file"`
	Refs []listedEntry `yaml:"refs"`
}

type listedEntry struct {
	Ref string `yaml:"ref"`
	URL string `yaml:"url"`
}

// runList prints the footnote URLs of each file with its reference.
// Nothing is fetched.
func runList(ctx context.Context, args []string, env *Environment) error {
	flags, paths, err := parseListFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}
	if len(paths) == 0 {
		return ErrNoInput
	}

	docs := make([]listedDoc, 0, len(paths))
	total := 0
	for _, path := range paths {
		urls, err := listURLs(ctx, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		doc := listedDoc{File: path, Refs: []listedEntry{}}
		for _, a := range qrtable.AssignRefs(urls) {
			doc.Refs = append(doc.Refs, listedEntry{Ref: string(a.Ref), URL: a.URL})
		}
		total += len(urls)
		docs = append(docs, doc)
	}

	if flags.yaml {
		out, err := yamlutil.Encode(docs)
		if err != nil {
			return err
		}
		_, _ = env.Stdout.Write(out)
	} else {
		for i, doc := range docs {
			if len(docs) > 1 {
				if i > 0 {
					fmt.Fprintln(env.Stdout)
				}
				fmt.Fprintf(env.Stdout, "%s:\n", doc.File)
			}
			for _, e := range doc.Refs {
				fmt.Fprintf(env.Stdout, "%s  %s\n", e.Ref, e.URL)
			}
		}
	}

	if total == 0 {
		return qrtable.ErrNoURLs
	}
	return nil
}

// listURLs extracts footnote URLs from a Markdown or DOCX file.
func listURLs(ctx context.Context, path string) ([]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".docx":
		return qrtable.DocxURLs(path)
	case ".md", ".markdown":
		content, err := os.ReadFile(path) // #nosec G304 -- user-provided path
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
		}
		return qrtable.MarkdownURLs(ctx, string(content))
	default:
		return nil, fmt.Errorf("%w: %q (want .md, .markdown or .docx)", ErrInvalidExtension, ext)
	}
}
