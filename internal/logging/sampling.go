package logging

import (
	"sort"

	"go.uber.org/zap/zapcore"
)

// newSampledCore wraps core with per-level sampling. Each configured level
// below Error gets its own sampler; unconfigured levels and Error and above
// pass through unsampled.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled || len(cfg.Levels) == 0 {
		return core
	}

	levels := make([]zapcore.Level, 0, len(cfg.Levels))
	for lvl := range cfg.Levels {
		if lvl < zapcore.ErrorLevel {
			levels = append(levels, lvl)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	sampled := make(map[zapcore.Level]bool, len(levels))
	cores := make([]zapcore.Core, 0, len(levels)+1)
	for _, lvl := range levels {
		sampled[lvl] = true
		rate := cfg.Levels[lvl]
		cores = append(cores, zapcore.NewSamplerWithOptions(
			&levelFilterCore{Core: core, only: func(l zapcore.Level) bool { return l == lvl }},
			cfg.Tick.Duration(),
			rate.Initial,
			rate.Thereafter,
		))
	}

	cores = append(cores, &levelFilterCore{
		Core: core,
		only: func(l zapcore.Level) bool { return !sampled[l] },
	})

	return zapcore.NewTee(cores...)
}

// levelFilterCore passes only the levels accepted by only.
type levelFilterCore struct {
	zapcore.Core
	only func(zapcore.Level) bool
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return c.only(lvl) && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

// With creates a child core that preserves level filtering.
func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{
		Core: c.Core.With(fields),
		only: c.only,
	}
}
