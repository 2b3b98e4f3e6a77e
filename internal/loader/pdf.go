package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dslipak/pdf"
)

// pageTimeout bounds text extraction of a single page; some malformed
// content streams never terminate.
const pageTimeout = 10 * time.Second

// maxTimedOutPages is how many page timeouts a document tolerates.
const maxTimedOutPages = 3

var (
	errPageTimeout = errors.New("page extraction timed out")
	errEmptyPage   = errors.New("empty page")
)

func extractPDF(ctx context.Context, path string) (string, int, error) {
	log := slog.Default().With("component", "loader", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, fmt.Errorf("stat pdf %s: %w", path, err)
	}

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", 0, fmt.Errorf("reading pdf %s (corrupted or password-protected?): %w", path, err)
	}

	numPages := r.NumPage()
	log.Debug("pdf opened", "pages", numPages)

	text, err := readPages(ctx, numPages, func(ctx context.Context, i int) (string, error) {
		page := r.Page(i)
		if page.V.IsNull() {
			return "", errEmptyPage
		}
		return extractPage(ctx, page)
	}, log)
	if err != nil {
		return "", 0, fmt.Errorf("reading pdf %s: %w", path, err)
	}
	return text, numPages, nil
}

// readPages concatenates the text of pages 1..n. Unreadable pages are
// skipped, but after maxTimedOutPages timeouts the document fails.
func readPages(ctx context.Context, n int, extract func(context.Context, int) (string, error), log *slog.Logger) (string, error) {
	var sb strings.Builder
	timedOut := 0
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		content, err := extract(ctx, i)
		switch {
		case errors.Is(err, errEmptyPage):
			continue
		case errors.Is(err, errPageTimeout):
			timedOut++
			if timedOut >= maxTimedOutPages {
				return "", fmt.Errorf("%d pages: %w", timedOut, err)
			}
			log.Warn("skipping pdf page", "page", i, "error", err)
			continue
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			log.Warn("skipping pdf page", "page", i, "error", err)
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")

		if i%10 == 0 {
			log.Debug("pdf progress", "processed", i, "total", n)
		}
	}
	return sb.String(), nil
}

// extractPage runs GetPlainText in a goroutine so it can be abandoned. The
// pdf package offers no way to interrupt it, so an abandoned call keeps its
// goroutine until it returns; maxTimedOutPages bounds how many one document
// can leave behind.
func extractPage(ctx context.Context, page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("pdf page panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(pageTimeout):
		return "", errPageTimeout
	}
}
