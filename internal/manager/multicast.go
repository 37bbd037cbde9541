package manager

import (
	"fmt"
	"regexp"
	"strings"
)

// compiledPattern is the cached regex form of a registered multicastId
// pattern, anchored at both ends per the matching rule: `+` matches
// exactly one partition, a trailing `*` matches one-or-more remaining
// partitions, everything else matches literally.
type compiledPattern struct {
	re *regexp.Regexp
}

func (p *compiledPattern) match(multicastID string) bool {
	return p.re.MatchString(multicastID)
}

// compilePattern translates a multicastId pattern into its anchored
// regex source. `*` is only valid as the final partition.
func compilePattern(pattern string) (*compiledPattern, error) {
	parts := strings.Split(pattern, "/")
	segs := make([]string, 0, len(parts))
	for i, part := range parts {
		switch {
		case part == "*":
			if i != len(parts)-1 {
				return nil, fmt.Errorf("subscription: wildcard * only allowed as the trailing partition: %q", pattern)
			}
			segs = append(segs, ".+")
		case part == "+":
			segs = append(segs, "[^/]+")
		default:
			segs = append(segs, regexp.QuoteMeta(part))
		}
	}
	re, err := regexp.Compile("^" + strings.Join(segs, "/") + "$")
	if err != nil {
		return nil, fmt.Errorf("subscription: compiling pattern %q: %w", pattern, err)
	}
	return &compiledPattern{re: re}, nil
}

// getOrCompile returns the cached compiledPattern for pattern,
// compiling and caching it on a miss. The cache is bounded (LRU); a
// long-lived provider registering many distinct wildcard patterns
// evicts the least-recently-used ones rather than growing forever.
func (r *registry) getOrCompile(pattern string) (*compiledPattern, error) {
	if cp, ok := r.compiled.Get(pattern); ok {
		return cp, nil
	}
	cp, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	r.compiled.Add(pattern, cp)
	return cp, nil
}
