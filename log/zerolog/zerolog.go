// Package zerolog adapts a zerolog.Logger to swrcache.Logger.
package zerolog

import (
	"github.com/rs/zerolog"
	"github.com/unkn0wn-root/swrcache"
)

type Logger struct{ L zerolog.Logger }

var _ swrcache.Logger = Logger{}

func (z Logger) Debug(msg string, f swrcache.Fields) { with(z.L.Debug(), f).Msg(msg) }
func (z Logger) Info(msg string, f swrcache.Fields)  { with(z.L.Info(), f).Msg(msg) }
func (z Logger) Warn(msg string, f swrcache.Fields)  { with(z.L.Warn(), f).Msg(msg) }
func (z Logger) Error(msg string, f swrcache.Fields) { with(z.L.Error(), f).Msg(msg) }

// with is a no-op on a disabled event (nil), so filtered levels cost nothing.
func with(e *zerolog.Event, f swrcache.Fields) *zerolog.Event {
	if e == nil || len(f) == 0 {
		return e
	}
	for k, v := range f {
		if err, ok := v.(error); ok {
			e = e.AnErr(k, err)
			continue
		}
		e = e.Interface(k, v)
	}
	return e
}
