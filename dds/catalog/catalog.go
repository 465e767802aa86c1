package catalog

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/types"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Labels for the synthetic rows.
const (
	SumLabel      = "Total Size"
	DatabaseLabel = "WP Database"
)

// Transform rewrites the resolved descriptor list. Transforms run in order after
// the built-in steps.
type Transform func(ctx context.Context, descriptors []types.Descriptor) []types.Descriptor

// Options selects what the catalog emits
type Options struct {
	CommonDirectories []string
	CustomDirectories string
	ShowDatabaseSize  bool
	ShowSum           bool
	// Headless callers never get the sum row.
	Headless bool
}

// Catalog resolves the ordered list of directories to report on:
// common, then custom, then database, then sum.
type Catalog struct {
	env        Environment
	opts       Options
	transforms []Transform
	log        zerolog.Logger
}

// New creates a Catalog
func New(env Environment, opts Options, log zerolog.Logger, transforms ...Transform) *Catalog {
	return &Catalog{
		env:        env,
		opts:       opts,
		transforms: transforms,
		log:        log.With().Str("component", "catalog").Logger(),
	}
}

// WithHeadless returns a copy of the catalog with the headless flag set.
func (c *Catalog) WithHeadless(headless bool) *Catalog {
	clone := *c
	clone.opts.Headless = headless
	return &clone
}

// Options returns the catalog's options.
func (c *Catalog) Options() Options {
	return c.opts
}

// Resolve returns the descriptors in report order.
func (c *Catalog) Resolve(ctx context.Context) []types.Descriptor {
	descriptors := c.commonDirectories()
	descriptors = append(descriptors, c.customDirectories()...)

	if c.opts.ShowDatabaseSize {
		if name := c.env.DatabaseName(); name != "" {
			descriptors = append(descriptors, types.Descriptor{
				Name:       DatabaseLabel,
				Path:       name,
				IsDatabase: true,
			})
		} else {
			c.log.Debug().Msg("database size enabled but no database name configured")
		}
	}

	if c.opts.ShowSum && !c.opts.Headless {
		descriptors = append(descriptors, types.Descriptor{Name: SumLabel, IsSum: true})
	}

	for _, transform := range c.transforms {
		descriptors = transform(ctx, descriptors)
	}
	return lo.Filter(descriptors, func(d types.Descriptor, _ int) bool {
		if d.IsSum || d.IsDatabase || d.Path != "" {
			return true
		}
		c.log.Debug().Str("name", d.Name).Msg("dropping transformed entry without a path")
		return false
	})
}

// Paths returns the non-empty paths of the resolved descriptors, the set
// invalidation works on.
func (c *Catalog) Paths(ctx context.Context) []string {
	return lo.FilterMap(c.Resolve(ctx), func(d types.Descriptor, _ int) (string, bool) {
		return d.Path, d.Path != ""
	})
}

func (c *Catalog) commonDirectories() []types.Descriptor {
	return lo.FilterMap(c.opts.CommonDirectories, func(key string, _ int) (types.Descriptor, bool) {
		path := c.env.CommonDirectory(key)
		if path == "" {
			c.log.Debug().Str("key", key).Msg("dropping unresolvable common directory")
			return types.Descriptor{}, false
		}
		return types.Descriptor{Name: key, Path: path}, true
	})
}

func (c *Catalog) customDirectories() []types.Descriptor {
	if strings.TrimSpace(c.opts.CustomDirectories) == "" {
		return nil
	}
	lines := strings.Split(c.opts.CustomDirectories, "\n")
	return lo.FilterMap(lines, func(line string, _ int) (types.Descriptor, bool) {
		d, ok := ParseCustomDirectory(line, c.env.InstallRoot())
		if !ok && strings.TrimSpace(line) != "" {
			c.log.Debug().Str("line", line).Msg("dropping malformed custom directory entry")
		}
		return d, ok
	})
}

// ParseCustomDirectory parses one "name|path" line. Lines without exactly one
// separator, or with an empty path, are rejected. A leading "~/" in the path is
// replaced by installRoot.
func ParseCustomDirectory(line, installRoot string) (types.Descriptor, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 2 {
		return types.Descriptor{}, false
	}

	name := strings.TrimSpace(parts[0])
	path := strings.TrimSpace(parts[1])
	if strings.HasPrefix(path, "~/") {
		path = joinInstallRoot(installRoot, path[2:])
	}
	if path == "" {
		return types.Descriptor{}, false
	}
	return types.Descriptor{Name: name, Path: path}, true
}

// joinInstallRoot concatenates like the CMS does with its trailing-slash root
// constant, without cleaning the result.
func joinInstallRoot(root, rest string) string {
	if root == "" {
		return rest
	}
	if strings.HasSuffix(root, "/") {
		return root + rest
	}
	return root + "/" + rest
}
