// Package qrtable builds a numbered reference table, with a QR code per row,
// from the URLs cited in a Markdown document's footnotes.
//
// # Quick Start
//
//	b, err := qrtable.NewBuilder()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	result, err := b.Build(ctx, qrtable.Input{
//	    Markdown: "See the docs[^1].\n\nQRCodeTable\n\n[^1]: https://go.dev/doc/\n",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("refs.pdf", result.PDF, 0644)
//
// The paragraph holding the placeholder ("QRCodeTable" by default) is
// replaced by the table. Use Input.HTMLOnly to skip PDF generation.
//
// # Pipeline
//
//  1. Footnotes are read from the goldmark AST and walked depth-first;
//     hyperlink targets and URLs in the text are collected, http(s) only,
//     deduplicated in first-seen order (ExtractURLs).
//  2. Each URL gets a two-digit hex reference, 01 to FF (AssignRefs).
//  3. Titles and QR codes are fetched concurrently per URL. A missing title
//     becomes the fallback title; a QR code is requested from each generator
//     in turn, with a fixed pause between attempts, until one returns an image.
//  4. The table geometry is planned (PlanLayout): each entry takes two rows,
//     the reference cell spans both, the URL spans the title and QR columns.
//  5. The table is injected into the rendered HTML and printed to PDF with
//     headless Chrome (go-rod).
//
// No URL or no placeholder fails the build before any network request is
// made. Title and QR failures only affect their own row.
//
// # Appending to an existing PDF
//
// AppendPDF merges the generated table after the pages of another PDF.
//
// # Parallel Processing
//
// For batches, BuilderPool manages several Builders, each with its own
// browser:
//
//	pool := qrtable.NewBuilderPool(qrtable.ResolvePoolSize(0))
//	defer pool.Close()
//
//	b, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(b)
package qrtable
