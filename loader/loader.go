// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/media"
	"github.com/rs/zerolog"
)

// Progress of a fetch. Total is -1 when the size is not known.
type Progress struct {
	Loaded int64
	Total  int64
}

type Options struct {
	URL     string
	Decoder decoder.Options

	// Pool defaults to decoder.DefaultPool.
	Pool *decoder.Pool
	// Client defaults to http.DefaultClient.
	Client *http.Client

	OnProgress       func(Progress)
	OnDecodeProgress func(chunk, total int)

	Logger zerolog.Logger
}

// Loader fetches a source and decodes it into a media.Audio. Failures are
// logged and kept in Err; Load then returns nil.
type Loader struct {
	opts Options
	log  zerolog.Logger

	mu        sync.Mutex
	gen       int
	cancel    context.CancelFunc
	loaded    bool
	destroyed bool
	err       error
}

func New(opts Options) *Loader {
	if opts.Pool == nil {
		opts.Pool = decoder.DefaultPool
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &Loader{
		opts: opts,
		log:  opts.Logger.With().Str("url", opts.URL).Logger(),
	}
}

// Load returns nil when loading failed, when there is no output context
// for the context backend, or when Reset or Destroy superseded it.
func (l *Loader) Load(ctx context.Context) *media.Audio {
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		return nil
	}
	if l.opts.URL == "" {
		l.err = ErrNoURL
		l.mu.Unlock()
		return nil
	}
	if l.opts.Decoder.Backend == decoder.BackendContext && l.opts.Decoder.SampleRate <= 0 {
		l.err = ErrNoContext
		l.mu.Unlock()
		l.log.Warn().Err(ErrNoContext).Msg("load skipped")
		return nil
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.err = nil
	l.mu.Unlock()
	defer cancel()

	handle := l.opts.Pool.Open(l.opts.URL, l.opts.Decoder)
	a := media.New(handle, l.log)

	if handle.Decoder().Decoded() {
		l.log.Debug().Msg("reusing decoded source")
		return l.finish(gen, a)
	}

	data, err := l.fetch(ctx)
	if l.superseded(ctx, gen) {
		a.Destroy()
		return nil
	}
	if err != nil {
		return l.fail(a, fmt.Errorf("fetching %s: %w", l.opts.URL, err))
	}

	if l.opts.OnDecodeProgress != nil {
		off := handle.Decoder().OnProgress(l.opts.OnDecodeProgress)
		defer off()
	}
	if err := a.DecodeAudioData(ctx, data); err != nil {
		if l.superseded(ctx, gen) {
			a.Destroy()
			return nil
		}
		return l.fail(a, err)
	}
	if l.superseded(ctx, gen) || !handle.Decoder().Decoded() {
		a.Destroy()
		return nil
	}

	return l.finish(gen, a)
}

func (l *Loader) finish(gen int, a *media.Audio) *media.Audio {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed || gen != l.gen {
		a.Destroy()
		return nil
	}
	l.loaded = true
	l.log.Debug().Float64("duration", a.Duration()).Msg("source loaded")
	return a
}

func (l *Loader) fail(a *media.Audio, err error) *media.Audio {
	a.Destroy()

	l.mu.Lock()
	l.err = err
	l.mu.Unlock()

	l.log.Error().Err(err).Msg("load failed")
	return nil
}

func (l *Loader) superseded(ctx context.Context, gen int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.destroyed || gen != l.gen || ctx.Err() != nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	url := l.opts.URL
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return l.fetchHTTP(ctx, url)
	}
	return l.fetchFile(ctx, strings.TrimPrefix(url, "file://"))
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	resp, err := l.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	return l.readAll(ctx, resp.Body, resp.ContentLength)
}

func (l *Loader) fetchFile(ctx context.Context, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer f.Close()

	total := int64(-1)
	if fi, err := f.Stat(); err == nil {
		total = fi.Size()
	}
	return l.readAll(ctx, f, total)
}

func (l *Loader) readAll(ctx context.Context, r io.Reader, total int64) ([]byte, error) {
	if total < 0 {
		total = -1
	}

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}

	pr := &progressReader{r: r, ctx: ctx, total: total, report: l.opts.OnProgress}
	if _, err := io.Copy(&buf, pr); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	pr.emit()

	return buf.Bytes(), nil
}

// progressReader reports bytes read and stops once ctx is done.
type progressReader struct {
	r      io.Reader
	ctx    context.Context
	loaded int64
	total  int64
	report func(Progress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w", err)
	}
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.emit()
	}
	return n, err
}

func (p *progressReader) emit() {
	if p.report != nil {
		p.report(Progress{Loaded: p.loaded, Total: p.total})
	}
}

// Reset aborts a running Load and clears the loaded flag so Load can run again.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.loaded = false
}

// Destroy is a final Reset.
func (l *Loader) Destroy() {
	l.Reset()

	l.mu.Lock()
	l.destroyed = true
	l.mu.Unlock()
}

func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Err is the error of the last failed Load.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
