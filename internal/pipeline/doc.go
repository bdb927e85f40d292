// Package pipeline implements the document side of reference table
// generation: Markdown parsing and rendering, and the HTML mutations that
// place the generated table into the rendered document.
//
// The stages are:
//   - Markdown preprocessing (line normalization, blank line compression)
//   - Markdown parsing and HTML rendering via Goldmark (GFM, footnotes,
//     syntax highlighting)
//   - Relative path rewriting for images loaded from a temporary file
//   - Table injection at the placeholder paragraph (goquery)
//   - CSS injection
//
// Network lookups and PDF rendering live in the root qrtable package; this
// package only ever sees plain data (rows and cell operations).
package pipeline
