package slog

import (
	"context"
	stdslog "log/slog"
	"sort"

	"github.com/unkn0wn-root/sessioncache"
)

var _ sessioncache.Logger = Logger{}

// Logger adapts a *slog.Logger. Fields are emitted in key order, under Group
// when it is set.
type Logger struct {
	L     *stdslog.Logger
	Group string
}

func (s Logger) Debug(msg string, f sessioncache.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f sessioncache.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f sessioncache.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f sessioncache.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(level stdslog.Level, msg string, f sessioncache.Fields) {
	ctx := context.Background()
	if !s.L.Enabled(ctx, level) {
		return
	}
	a := attrs(f)
	if s.Group != "" && len(a) > 0 {
		a = []stdslog.Attr{{Key: s.Group, Value: stdslog.GroupValue(a...)}}
	}
	s.L.LogAttrs(ctx, level, msg, a...)
}

func attrs(f sessioncache.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]stdslog.Attr, 0, len(f))
	for _, k := range keys {
		out = append(out, stdslog.Any(k, f[k]))
	}
	return out
}
