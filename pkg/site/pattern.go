package site

import (
	"fmt"
	"net/url"
	"strings"
)

// Params are the values of a route's pattern parameters.
type Params map[string]string

// Expand substitutes params into pattern. Segments starting with ":" are
// parameters; their values are path-escaped. The result is cleaned to a
// leading slash without a trailing one.
func Expand(pattern string, params Params) (string, error) {
	keys, err := paramNames(pattern)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return cleanPath(pattern), nil
	}

	segments := strings.Split(strings.Trim(pattern, "/"), "/")
	for i, seg := range segments {
		name, ok := strings.CutPrefix(seg, ":")
		if !ok {
			continue
		}
		v, ok := params[name]
		if !ok || v == "" {
			return "", fmt.Errorf("%w: %q in %s", ErrMissingParam, name, pattern)
		}
		if v == "." || v == ".." {
			return "", fmt.Errorf("%w: %q=%q", ErrInvalidParam, name, v)
		}
		segments[i] = url.PathEscape(v)
	}
	return "/" + strings.Join(segments, "/"), nil
}

// paramNames lists the parameters of pattern in order.
func paramNames(pattern string) ([]string, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, pattern)
	}
	var names []string
	seen := map[string]bool{}
	for seg := range strings.SplitSeq(strings.Trim(pattern, "/"), "/") {
		if seg == "" && pattern != "/" {
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPattern, pattern)
		}
		name, ok := strings.CutPrefix(seg, ":")
		if !ok {
			continue
		}
		if name == "" || seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

func cleanPath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p
}

// outputDir is the directory of a route path relative to the output root.
func outputDir(routePath string) string {
	return strings.Trim(routePath, "/")
}
