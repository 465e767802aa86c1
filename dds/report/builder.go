package report

import (
	"context"
	"time"

	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/cache"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/catalog"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/sizer"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// DatabaseSizer measures the database pseudo-entry.
type DatabaseSizer interface {
	SchemaSize(ctx context.Context) (int64, error)
}

// Transform rewrites finished report rows. Transforms run in order after formatting.
type Transform func(ctx context.Context, rows []types.Row) []types.Row

// Report is one build's output.
type Report struct {
	ID          uuid.UUID   `json:"id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Rows        []types.Row `json:"rows"`
}

// Options tunes a Builder
type Options struct {
	DecimalPlaces int
	Transforms    []Transform
}

// Builder assembles size reports from a catalog, the size cache and a sizer.
type Builder struct {
	catalog  *catalog.Catalog
	cache    *cache.SizeCache
	sizer    sizer.Sizer
	database DatabaseSizer
	opts     Options
	now      func() time.Time
	log      zerolog.Logger
}

// NewBuilder creates a Builder. database may be nil, in which case the database
// row reports as missing.
func NewBuilder(cat *catalog.Catalog, sizeCache *cache.SizeCache, s sizer.Sizer, database DatabaseSizer, opts Options, log zerolog.Logger) *Builder {
	return &Builder{
		catalog:  cat,
		cache:    sizeCache,
		sizer:    s,
		database: database,
		opts:     opts,
		now:      time.Now,
		log:      log.With().Str("component", "report").Logger(),
	}
}

// WithHeadless returns a builder whose catalog has the headless flag set.
func (b *Builder) WithHeadless(headless bool) *Builder {
	clone := *b
	clone.catalog = b.catalog.WithHeadless(headless)
	return &clone
}

// Catalog returns the catalog the builder resolves against.
func (b *Builder) Catalog() *catalog.Catalog {
	return b.catalog
}

// BuildReport resolves the catalog and sizes every row. Data errors never fail
// the build; the only error returned is the context's.
func (b *Builder) BuildReport(ctx context.Context) (Report, error) {
	report := Report{ID: uuid.New(), GeneratedAt: b.now()}
	log := b.log.With().Str("report_id", report.ID.String()).Logger()

	descriptors := b.catalog.Resolve(ctx)
	rows := make([]types.Row, 0, len(descriptors))

	for _, d := range descriptors {
		row := types.NewRow(d)
		switch {
		case d.IsSum:
			// filled in once every other row is known
		case d.IsDatabase:
			row.Size = b.databaseSize(ctx)
		default:
			size, err := b.lookup(ctx, d.Path, false)
			if err != nil {
				return Report{}, err
			}
			row.Size = size
		}
		rows = append(rows, row)
	}

	total := sumRows(rows)
	for i := range rows {
		if rows[i].IsSum {
			rows[i].Size = total
		}
	}

	rows = ApplyFriendlySizes(rows, b.opts.DecimalPlaces)
	for _, transform := range b.opts.Transforms {
		rows = transform(ctx, rows)
	}

	log.Debug().Int("rows", len(rows)).Stringer("total", total).Msg("report built")
	report.Rows = rows
	return report, nil
}

// DirectorySize returns a single formatted row for path, going through the
// cache. refresh drops the cached entry first.
func (b *Builder) DirectorySize(ctx context.Context, path string, refresh bool) (types.Row, error) {
	size, err := b.lookup(ctx, path, refresh)
	if err != nil {
		return types.Row{}, err
	}
	row := types.Row{
		Descriptor:   types.Descriptor{Name: path, Path: path},
		Size:         size,
		SizeFriendly: FormatSize(size, b.opts.DecimalPlaces),
	}
	return row, nil
}

// Placeholders returns the catalog rows in the unknown state, without touching
// the cache or the filesystem.
func (b *Builder) Placeholders(ctx context.Context) []types.Row {
	return lo.Map(b.catalog.Resolve(ctx), func(d types.Descriptor, _ int) types.Row {
		return types.NewRow(d)
	})
}

func (b *Builder) lookup(ctx context.Context, path string, refresh bool) (types.Size, error) {
	if refresh {
		b.cache.Invalidate(ctx, path)
	}
	if cached, ok := b.cache.Get(ctx, path); ok {
		return types.SizeFromSentinel(cached), nil
	}

	size, err := b.sizer.ComputeSize(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.Unknown(), ctxErr
		}
		b.log.Warn().Err(err).Str("path", path).Msg("size computation failed")
		return types.Missing(), nil
	}

	b.cache.Put(ctx, path, size.Sentinel(), b.cache.TTLMinutes())
	return size, nil
}

func (b *Builder) databaseSize(ctx context.Context) types.Size {
	if b.database == nil {
		return types.Missing()
	}
	n, err := b.database.SchemaSize(ctx)
	if err != nil {
		b.log.Warn().Err(err).Msg("database size unavailable")
		return types.Missing()
	}
	return types.Bytes(n)
}

// sumRows adds every non-sum row. Unknown and missing sizes contribute nothing.
func sumRows(rows []types.Row) types.Size {
	return lo.Reduce(rows, func(total types.Size, r types.Row, _ int) types.Size {
		if r.IsSum {
			return total
		}
		return total.Add(r.Size)
	}, types.Bytes(0))
}
