package restclient

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/valyala/fasttemplate"
)

// normalizeHost prefixes host with "http://" unless it already has an http
// or https scheme.
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	lower := strings.ToLower(host)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return host
	}
	return "http://" + host
}

// expandEndpoint replaces the {name} placeholders of endpoint with the given
// values, path escaped before "?" and query escaped after it.
func expandEndpoint(endpoint string, params []Parameter) (string, error) {
	if !strings.Contains(endpoint, "{") {
		return endpoint, nil
	}

	values := make(map[string]string, len(params))
	for _, p := range params {
		values[p.Name] = p.Value
	}

	path, query, hasQuery := strings.Cut(endpoint, "?")

	path, err := fasttemplate.ExecuteFuncStringWithErr(path, "{", "}", func(w io.Writer, tag string) (int, error) {
		v, ok := values[tag]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrMissingPathParam, tag)
		}
		if v == "" {
			return 0, fmt.Errorf("%w %q", ErrEmptyPathParam, tag)
		}
		return io.WriteString(w, url.PathEscape(v))
	})
	if err != nil {
		return "", err
	}

	if !hasQuery {
		return path, nil
	}

	query, err = fasttemplate.ExecuteFuncStringWithErr(query, "{", "}", func(w io.Writer, tag string) (int, error) {
		v, ok := values[tag]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrMissingPathParam, tag)
		}
		return io.WriteString(w, url.QueryEscape(v))
	})
	if err != nil {
		return "", err
	}

	return path + "?" + query, nil
}

// setQueryParams sets params on the query of u. Each name ends up with a
// single value: existing query values sharing a name with one of params are
// removed, and among params the last value of a name wins, in the position of
// its last occurrence. The remaining query is kept byte for byte, and u is
// left untouched when params is empty.
func setQueryParams(u *url.URL, params []Parameter) {
	if len(params) == 0 {
		return
	}

	last := make(map[string]int, len(params))
	for i, p := range params {
		last[p.Name] = i
	}

	var parts []string
	if u.RawQuery != "" {
		for _, part := range strings.Split(u.RawQuery, "&") {
			key, _, _ := strings.Cut(part, "=")
			if name, err := url.QueryUnescape(key); err == nil {
				if _, ok := last[name]; ok {
					continue
				}
			}
			parts = append(parts, part)
		}
	}

	for i, p := range params {
		if last[p.Name] != i {
			continue
		}
		parts = append(parts, url.QueryEscape(p.Name)+"="+url.QueryEscape(p.Value))
	}

	u.RawQuery = strings.Join(parts, "&")
	u.ForceQuery = false
}

// encodeForm encodes params as application/x-www-form-urlencoded, keeping
// their order.
func encodeForm(params []Parameter) string {
	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}
