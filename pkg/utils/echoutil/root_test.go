package echoutil_test

import (
	"testing"

	"github.com/opre/ops/pkg/utils/echoutil"
)

func TestRoot(t *testing.T) {
	for name, testcase := range map[string]struct {
		root  string
		parts []string
		then  string
	}{
		"path root": {
			root: "/api/v1", parts: []string{"cans", ":id"}, then: "/api/v1/cans/:id/",
		},
		"path root with trailing slash": {
			root: "/api/v1/", parts: []string{"cans/:id/history"}, then: "/api/v1/cans/:id/history/",
		},
		"root itself": {
			root: "/api/v1", parts: nil, then: "/api/v1/",
		},
		"url root": {
			root: "https://example.com:8080/api", parts: []string{"history"},
			then: "https://example.com:8080/api/history/",
		},
	} {
		t.Run(name, func(t *testing.T) {
			api, err := echoutil.Root(testcase.root)
			if err != nil {
				t.Fatal(err)
			}
			if actual := api(testcase.parts...); actual != testcase.then {
				t.Errorf("actual = %s, expected = %s", actual, testcase.then)
			}
		})
	}
}
