package reorder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Failure
	}{
		{name: "nil", err: nil, want: FailureNone},
		{name: "forbidden", err: statusErr(http.StatusForbidden), want: FailureStale},
		{name: "not found wrapped", err: fmt.Errorf("persist: %w", statusErr(http.StatusNotFound)), want: FailureStale},
		{name: "server error", err: statusErr(http.StatusInternalServerError), want: FailureTransient},
		{name: "bad request", err: statusErr(http.StatusBadRequest), want: FailureTransient},
		{name: "timeout", err: context.DeadlineExceeded, want: FailureTransient},
		{name: "plain", err: errors.New("connection refused"), want: FailureTransient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestStatusCodeAndMessages(t *testing.T) {
	code, ok := StatusCode(fmt.Errorf("x: %w", statusErr(http.StatusForbidden)))
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, code)

	_, ok = StatusCode(errors.New("nope"))
	assert.False(t, ok)

	assert.Contains(t, FailureMessage(statusErr(http.StatusNotFound)), "changed elsewhere")
	assert.Contains(t, FailureMessage(fmt.Errorf("put: %w", context.DeadlineExceeded)), "timed out")
	assert.Equal(t, "Couldn't save the new order.", FailureMessage(statusErr(http.StatusServiceUnavailable)))
	assert.Contains(t, UndoFailureMessage(statusErr(http.StatusForbidden)), "permission")
	assert.Equal(t, "stale", FailureStale.String())
}
