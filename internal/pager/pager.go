package pager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/modernsales/pawnshop/internal/pawn"
	"github.com/modernsales/pawnshop/pkg/pagination"
)

// DefaultResizeDelay is the quiet period before a new page size is applied.
const DefaultResizeDelay = 250 * time.Millisecond

// ErrLoadInFlight is returned when a load is requested while another runs.
var ErrLoadInFlight = errors.New("page load already in progress")

// Loader fetches one page of records.
type Loader func(ctx context.Context, pageIndex, pageSize int) (*pawn.Page, error)

// Options configures a Pager.
type Options struct {
	ResizeDelay time.Duration
	PageSize    int
	// OnReload receives pages loaded because the page size changed.
	OnReload func(*pawn.Page, error)
}

// Pager tracks the current page of the record list. Page size changes are
// debounced and never applied while a load is running; the pending change
// waits for the next quiet period after the load ends.
type Pager struct {
	ctx      context.Context
	load     Loader
	delay    time.Duration
	onReload func(*pawn.Page, error)

	mu        sync.Mutex
	timer     *time.Timer
	loading   bool
	closed    bool
	pageSize  int
	pageIndex int
	total     int64
	desired   int
	reload    bool
}

func New(ctx context.Context, load Loader, opts Options) *Pager {
	delay := opts.ResizeDelay
	if delay <= 0 {
		delay = DefaultResizeDelay
	}
	size := pagination.NormalizePageSize(opts.PageSize)
	return &Pager{
		ctx:      ctx,
		load:     load,
		delay:    delay,
		onReload: opts.OnReload,
		pageSize: size,
		desired:  size,
	}
}

// PageSize is the size used by the next load.
func (p *Pager) PageSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageSize
}

// PageIndex is the zero-based index of the last loaded page.
func (p *Pager) PageIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageIndex
}

// HasNext reports whether rows exist past the current page.
func (p *Pager) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int64(p.pageIndex+1)*int64(p.pageSize) < p.total
}

// Load fetches pageIndex. When the index ran past the end (rows were deleted
// since the last load) the last non-empty page is loaded instead.
func (p *Pager) Load(ctx context.Context, pageIndex int) (*pawn.Page, error) {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return nil, ErrLoadInFlight
	}
	p.loading = true
	size := p.pageSize
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
	}()

	if pageIndex < 0 {
		pageIndex = 0
	}
	page, err := p.load(ctx, pageIndex, size)
	if err != nil {
		return nil, err
	}
	if pageIndex > 0 && page.TotalCount > 0 && len(page.Items) == 0 {
		if last := int((page.TotalCount - 1) / int64(size)); last != pageIndex {
			pageIndex = last
			if page, err = p.load(ctx, pageIndex, size); err != nil {
				return nil, err
			}
		}
	}

	p.mu.Lock()
	p.pageIndex = pageIndex
	p.total = page.TotalCount
	p.mu.Unlock()
	return page, nil
}

// Next loads the following page, or reloads the current one at the end.
func (p *Pager) Next(ctx context.Context) (*pawn.Page, error) {
	index := p.PageIndex()
	if p.HasNext() {
		index++
	}
	return p.Load(ctx, index)
}

// Prev loads the preceding page, stopping at the first.
func (p *Pager) Prev(ctx context.Context) (*pawn.Page, error) {
	return p.Load(ctx, p.PageIndex()-1)
}

// Resize asks for rows per page. The request is clamped and applied after
// the quiet period; every call restarts the wait.
func (p *Pager) Resize(rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.desired = pagination.ClampPageSize(rows)
	p.armLocked()
}

// Close stops any pending resize.
func (p *Pager) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
}

func (p *Pager) armLocked() {
	if p.timer == nil {
		p.timer = time.AfterFunc(p.delay, p.fire)
		return
	}
	p.timer.Stop()
	p.timer.Reset(p.delay)
}

func (p *Pager) fire() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.loading {
		p.armLocked()
		p.mu.Unlock()
		return
	}
	if p.desired == p.pageSize && !p.reload {
		p.mu.Unlock()
		return
	}
	p.pageSize = p.desired
	p.reload = true
	p.mu.Unlock()

	page, err := p.Load(p.ctx, 0)
	p.mu.Lock()
	if errors.Is(err, ErrLoadInFlight) {
		// a load started between the check and ours; retry after it
		if !p.closed {
			p.armLocked()
		}
		p.mu.Unlock()
		return
	}
	p.reload = false
	p.mu.Unlock()

	if p.onReload != nil {
		p.onReload(page, err)
	}
}
