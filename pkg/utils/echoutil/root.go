package echoutil

import (
	"net/url"
	"path"
	"strings"
)

// Root creates api URL factory
//
// args:
//   - r: api root, a path or an URL.
//
// return:
//   - func: it receive relative path from root, and returns full-path of URL. It always ends with "/".
func Root(r string) (func(...string) string, error) {
	//    when r is https://example.org:8080/api/root/path
	origin := "" // https://example.org:8080/ . "/" terminated. if r is path only, this is empty.
	base := ""   // /api/root/path
	{
		b, err := url.Parse(r)
		if err != nil {
			return nil, err
		}
		base = b.Path
		if b.Host != "" || b.Scheme != "" {
			o := *b
			o.RawPath = ""
			o.Path = ""
			o.RawQuery = ""
			o.Fragment = ""
			origin = withSlash(o.String())
		}
	}

	return func(s ...string) string {
		parts := make([]string, len(s)+1)
		parts[0] = base
		copy(parts[1:], s)
		p := path.Join(parts...)
		if origin != "" {
			p = strings.TrimLeft(p, "/")
		} else if p == "" || p[0] != '/' {
			p = "/" + p
		}

		return withSlash(origin + p)
	}, nil
}

func withSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
