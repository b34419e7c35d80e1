package railcache

import (
	"time"

	"github.com/spf13/cast"
)

// ttlAt resolves the TTL carried by slot i: an integer is used as is; an options
// structure contributes "ttl", else "expires_in"; anything else, or a negative or
// unreadable value, yields the client's default.
func (r *Adapter) ttlAt(args callArgs, i int) int {
	if a, ok := args.at(i); ok {
		switch a.kind {
		case argInt:
			if a.n >= 0 {
				return a.n
			}
		case argOptions:
			if n, ok := optionTTL(a.opts); ok {
				return n
			}
		}
	}
	return max(r.client.DefaultTTL(), 0)
}

// optionTTL returns the first of ttl/expires_in present in o. The first present key
// decides even when its value is unusable.
func optionTTL(o Options) (int, bool) {
	for _, name := range [...]string{optTTL, optExpiresIn} {
		v, present := o[name]
		if !present {
			continue
		}
		return toSeconds(v)
	}
	return 0, false
}

func toSeconds(v any) (int, bool) {
	var n int
	if d, ok := v.(time.Duration); ok {
		n = int(d / time.Second)
	} else {
		var err error
		if n, err = cast.ToIntE(v); err != nil {
			return 0, false
		}
	}
	if n < 0 {
		return 0, false
	}
	return n, true
}

// decodeAt reports whether slot i asks for decoded values. Only a bare true or an
// options structure with raw == true (a real boolean) selects raw mode.
func decodeAt(args callArgs, i int) bool {
	a, ok := args.at(i)
	if !ok {
		return true
	}
	switch a.kind {
	case argBool:
		return !a.flag
	case argOptions:
		raw, isBool := a.opts[optRaw].(bool)
		return !(isBool && raw)
	}
	return true
}
