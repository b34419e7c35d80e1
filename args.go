package railcache

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Options is the trailing options structure of a call or of New.
type Options map[string]any

// Option names with a meaning at this layer.
const (
	optServers           = "servers"
	optNamespace         = "namespace"
	optNamespaceSep      = "namespace_separator"
	optPrefixKey         = "prefix_key"
	optPrefixDelimiter   = "prefix_delimiter"
	optStringReturnTypes = "string_return_types"
	optTTL               = "ttl"
	optExpiresIn         = "expires_in"
	optRaw               = "raw"
)

type argKind uint8

const (
	argValue   argKind = iota // anything not covered below
	argString                 // a single string
	argStrings                // a list of strings
	argInt                    // an integer; TTL in seconds
	argOptions                // an options structure
	argBool                   // a bare boolean; the raw flag
)

// callArg is one trailing argument, classified once.
type callArg struct {
	kind argKind
	str  string
	strs []string
	n    int
	opts Options
	flag bool
	v    any
}

type callArgs []callArg

func normalize(args []any) callArgs {
	out := make(callArgs, len(args))
	for i, a := range args {
		out[i] = classify(a)
	}
	return out
}

// at returns the argument in slot i, if the caller supplied one.
func (a callArgs) at(i int) (callArg, bool) {
	if i < 0 || i >= len(a) {
		return callArg{}, false
	}
	return a[i], true
}

func classify(v any) callArg {
	a := callArg{kind: argValue, v: v}
	switch x := v.(type) {
	case Options:
		a.kind, a.opts = argOptions, x
	case map[string]any:
		a.kind, a.opts = argOptions, Options(x)
	case map[string]string:
		o := make(Options, len(x))
		for k, s := range x {
			o[k] = s
		}
		a.kind, a.opts = argOptions, o
	case bool:
		a.kind, a.flag = argBool, x
	case string:
		a.kind, a.str = argString, x
	case []string:
		a.kind, a.strs = argStrings, x
	case []any:
		if ss, ok := stringList(x); ok {
			a.kind, a.strs = argStrings, ss
		}
	case time.Duration:
		a.kind, a.n = argInt, int(x/time.Second)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		a.kind, a.n = argInt, cast.ToInt(x)
	}
	return a
}

func stringList(xs []any) ([]string, bool) {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		s, ok := x.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

type construction struct {
	servers           []string
	options           map[string]string
	stringReturnTypes bool
}

// normalizeConstruction turns New's arguments into a server list and string options.
// Every string or string list is a server. A trailing options structure contributes
// all its entries except "servers", which is only consulted when no server was
// given positionally.
func normalizeConstruction(args []any) construction {
	in := construction{options: make(map[string]string)}
	all := normalize(args)
	for _, a := range all {
		switch a.kind {
		case argString:
			in.servers = append(in.servers, a.str)
		case argStrings:
			in.servers = append(in.servers, a.strs...)
		}
	}

	if last, ok := all.at(len(all) - 1); ok && last.kind == argOptions {
		for k, v := range last.opts {
			if k == optServers {
				continue
			}
			in.options[k] = stringify(v)
		}
		if len(in.servers) == 0 {
			if s, ok := last.opts[optServers]; ok {
				switch sv := classify(s); sv.kind {
				case argString:
					in.servers = []string{sv.str}
				case argStrings:
					in.servers = append([]string(nil), sv.strs...)
				}
			}
		}
	}

	fold(in.options, optNamespace, optPrefixKey)
	fold(in.options, optNamespaceSep, optPrefixDelimiter)
	_, in.stringReturnTypes = in.options[optStringReturnTypes]
	return in
}

// fold renames alias to native; the alias wins over an explicit native value.
func fold(opts map[string]string, alias, native string) {
	if v, ok := opts[alias]; ok {
		opts[native] = v
		delete(opts, alias)
	}
}

func stringify(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
