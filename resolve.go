package qrtable

import (
	"context"
	"sync"
)

// Resolve assigns references to urls and fetches a title and a QR code for
// each, using at most the configured number of workers. Rows are returned in
// urls order whatever the completion order. A failure in one row never
// affects another.
func (b *Builder) Resolve(ctx context.Context, urls []string) []Row {
	assignments := AssignRefs(urls)
	if len(assignments) == 0 {
		return nil
	}

	concurrency := min(b.cfg.workers, len(assignments))

	rows := make([]Row, len(assignments))
	var wg sync.WaitGroup
	jobs := make(chan int, len(assignments))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					rows[idx] = Row{
						Entry: NewEntry(assignments[idx], "", b.cfg.fallbackTitle),
						QRErr: err,
					}
					continue
				}
				rows[idx] = b.resolveRow(ctx, assignments[idx])
			}
		}()
	}

	for i := range assignments {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return rows
}

// resolveRow looks up the title while the QR chain runs.
func (b *Builder) resolveRow(ctx context.Context, a Assignment) Row {
	titleCh := make(chan string, 1)
	go func() {
		titleCh <- b.titles.Resolve(ctx, a.URL)
	}()

	img, err := b.qr.Acquire(ctx, a.URL, b.cfg.qrSize)
	row := Row{
		Entry: NewEntry(a, <-titleCh, b.cfg.fallbackTitle),
		QR:    img,
		QRErr: err,
	}
	if err != nil {
		row.QR = nil
		b.logger.WarnContext(ctx, "no QR code for URL", "ref", a.Ref, "url", a.URL, "error", err)
	}
	return row
}
