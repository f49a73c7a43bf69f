package report

import (
	"github.com/malcr/malcr/filesystem"
	"github.com/malcr/malcr/where"
	"github.com/metafates/gache"
	"github.com/samber/mo"
)

var cacher = gache.New[*Report](
	&gache.Options{
		Path:       where.LastRun(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Save replaces the stored summary with r.
func Save(r *Report) error {
	return cacher.Set(r)
}

// Last returns the summary of the most recent run, if any was saved.
func Last() (mo.Option[*Report], error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return mo.None[*Report](), err
	}
	if expired || cached == nil {
		return mo.None[*Report](), nil
	}
	return mo.Some(cached), nil
}
