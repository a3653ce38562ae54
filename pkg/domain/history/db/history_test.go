package db_test

import (
	"testing"

	khistory "github.com/opre/ops/pkg/domain/history/db"
)

func TestPage_Normalized(t *testing.T) {
	for name, testcase := range map[string]struct {
		when khistory.Page
		then khistory.Page
	}{
		"zero page takes the default limit": {
			when: khistory.Page{},
			then: khistory.Page{Limit: khistory.DefaultLimit},
		},
		"limit is kept in range": {
			when: khistory.Page{Limit: 50, Offset: 10},
			then: khistory.Page{Limit: 50, Offset: 10},
		},
		"too large limit is cut down": {
			when: khistory.Page{Limit: 1000},
			then: khistory.Page{Limit: khistory.MaxLimit},
		},
		"negative offset is cleared": {
			when: khistory.Page{Limit: 5, Offset: -3},
			then: khistory.Page{Limit: 5},
		},
	} {
		t.Run(name, func(t *testing.T) {
			if got := testcase.when.Normalized(); got != testcase.then {
				t.Errorf("got %+v, want %+v", got, testcase.then)
			}
		})
	}
}
