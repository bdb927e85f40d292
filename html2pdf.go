package qrtable

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-qrtable/internal/fileutil"
	"github.com/alnah/go-qrtable/internal/process"
)

// pdfPrinter turns the finished HTML document into PDF bytes.
type pdfPrinter interface {
	Print(ctx context.Context, htmlContent string, page *PageSettings) ([]byte, error)
	Close() error
}

// filePrinter prints an HTML file already on disk.
type filePrinter interface {
	PrintFile(ctx context.Context, path string, page *PageSettings) ([]byte, error)
	Close() error
}

var (
	_ pdfPrinter  = (*tempFilePrinter)(nil)
	_ filePrinter = (*chromeSession)(nil)
)

// Paper dimensions in inches, portrait.
var paperSizes = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeLegal:  {8.5, 14},
}

// chromeSession owns one headless Chrome, started on first use. go-rod
// downloads a Chromium build when none is installed.
type chromeSession struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

func newChromeSession(timeout time.Duration) *chromeSession {
	return &chromeSession{timeout: timeout}
}

func sandboxDisabled() bool {
	return os.Getenv("CI") == "true" ||
		os.Getenv("ROD_NO_SANDBOX") != "" ||
		os.Getenv("ROD_BROWSER_BIN") != ""
}

// start launches Chrome unless it is already running. Callers hold mu.
func (s *chromeSession) start() error {
	if s.browser != nil {
		return nil
	}

	l := launcher.New().Headless(true)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if sandboxDisabled() {
		l = l.NoSandbox(true)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	s.launcher = l
	s.browser = b
	return nil
}

// Close shuts Chrome down, including helper processes it spawned.
func (s *chromeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closeErr error
	if s.browser != nil {
		closeErr = s.browser.Close()
		s.browser = nil
	}
	if s.launcher != nil {
		process.KillTree(s.launcher.PID())
		s.launcher.Kill()
		s.launcher = nil
	}
	return closeErr
}

// pageTimeout is the session timeout, shortened to what is left of ctx's
// deadline when that comes first.
func (s *chromeSession) pageTimeout(ctx context.Context) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return s.timeout, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return min(s.timeout, left), nil
}

// PrintFile loads path in a new tab and prints it with the page settings.
func (s *chromeSession) PrintFile(ctx context.Context, path string, page *PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.start(); err != nil {
		return nil, err
	}

	tab, err := s.browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = tab.Close() }()

	timeout, err := s.pageTimeout(ctx)
	if err != nil {
		return nil, err
	}
	tab = tab.Context(ctx).Timeout(timeout)

	// QR images are data: URIs, so load completes without network access.
	if err := tab.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	stream, err := tab.PDF(printParams(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	out, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: read stream: %v", ErrPDFGeneration, err)
	}
	return out, nil
}

// printParams maps page settings onto Chrome's print parameters. Unknown
// sizes fall back to letter and a zero margin to DefaultMargin.
func printParams(page *PageSettings) *proto.PagePrintToPDF {
	if page == nil {
		page = DefaultPageSettings()
	}
	dims, ok := paperSizes[strings.ToLower(page.Size)]
	if !ok {
		dims = paperSizes[PageSizeLetter]
	}
	margin := page.Margin
	if margin == 0 {
		margin = DefaultMargin
	}
	inches := func(v float64) *float64 { return &v }

	return &proto.PagePrintToPDF{
		Landscape:       strings.EqualFold(page.Orientation, OrientationLandscape),
		PaperWidth:      inches(dims[0]),
		PaperHeight:     inches(dims[1]),
		MarginTop:       inches(margin),
		MarginBottom:    inches(margin),
		MarginLeft:      inches(margin),
		MarginRight:     inches(margin),
		PrintBackground: true,
	}
}

// tempFilePrinter writes the document to a temporary .html file so Chrome
// can load it from disk, then removes it.
type tempFilePrinter struct {
	files filePrinter
}

func newTempFilePrinter(timeout time.Duration) *tempFilePrinter {
	return &tempFilePrinter{files: newChromeSession(timeout)}
}

func (p *tempFilePrinter) Print(ctx context.Context, htmlContent string, page *PageSettings) ([]byte, error) {
	path, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return p.files.PrintFile(ctx, path, page)
}

func (p *tempFilePrinter) Close() error {
	if p.files == nil {
		return nil
	}
	return p.files.Close()
}
