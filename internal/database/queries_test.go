package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func Test_int64ArrayConversion(t *testing.T) {
	tcases := []struct {
		name string
		ids  []int
	}{
		{name: "empty", ids: []int{}},
		{name: "single", ids: []int{7}},
		{name: "order preserved", ids: []int{3, 1, 2}},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			a := toInt64Array(tc.ids)
			assert.Len(t, a, len(tc.ids))
			assert.Equal(t, tc.ids, fromInt64Array(a), "expected ids to survive conversion")
		})
	}

	assert.NotNil(t, fromInt64Array(nil), "expected NULL arrays to become empty slices")
}

func Test_isUniqueViolation(t *testing.T) {
	tcases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "plain error", err: errors.New("boom"), expected: false},
		{name: "unique violation", err: &pq.Error{Code: uniqueViolation}, expected: true},
		{name: "wrapped unique violation", err: fmt.Errorf("insert: %w", &pq.Error{Code: uniqueViolation}), expected: true},
		{name: "other pq error", err: &pq.Error{Code: "23503"}, expected: false},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, isUniqueViolation(tc.err))
		})
	}
}
