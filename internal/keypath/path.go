// internal/keypath/path.go
package keypath

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex matches a single key segment, e.g. `calc` or `ICalc_v2`.
var segmentRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "-" && name != "_"
}

// Parse creates a Path by parsing its canonical string representation.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("key path cannot be empty")
	}

	segments := strings.Split(raw, ".")
	if len(segments) > 3 {
		return Path{}, fmt.Errorf("key path %q has %d segments, at most 3 are allowed", raw, len(segments))
	}
	for _, segment := range segments {
		if segment == "" {
			return Path{}, fmt.Errorf("key path %q contains empty segment", raw)
		}
		if !segmentRegex.MatchString(segment) {
			return Path{}, fmt.Errorf("invalid key path segment format: %q", segment)
		}
		if !isValidSegmentName(segment) {
			return Path{}, fmt.Errorf("invalid key path segment name: %q", segment)
		}
	}

	p := Path{Component: segments[0]}
	if len(segments) > 1 {
		p.Interface = segments[1]
	}
	if len(segments) > 2 {
		p.Method = segments[2]
	}
	return p, nil
}

// String serializes the Path into its canonical representation.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString(p.Component)
	if p.Interface != "" {
		sb.WriteRune('.')
		sb.WriteString(p.Interface)
	}
	if p.Method != "" {
		sb.WriteRune('.')
		sb.WriteString(p.Method)
	}
	return sb.String()
}
