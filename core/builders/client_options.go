package builders

import "strings"

type clientConfig struct {
	typeProcessors map[string]func(any) any
}

type ClientOption func(*clientConfig)

// WithTypeProcessor converts scanned values of the given database types with fn.
// The first processor registered for a type wins.
func WithTypeProcessor(fn func(any) any, types ...string) ClientOption {
	return func(cc *clientConfig) {
		for _, typ := range types {
			t := strings.ToLower(typ)
			if _, ok := cc.typeProcessors[t]; ok {
				continue
			}
			cc.typeProcessors[t] = fn
		}
	}
}
