package ccfserr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotADir, http.StatusBadRequest},
		{KindNotAFile, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindNotLeader, http.StatusTemporaryRedirect},
		{KindUnavailable, http.StatusServiceUnavailable},
		{KindTransport, http.StatusInternalServerError},
		{KindIO, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(New(c.kind, "boom")), "kind %s", c.kind)
	}
}

func TestHTTPStatusOnPlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestWrapPreservesCauseAndUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindIO, cause, "write snapshot")

	assert.Equal(t, "write snapshot: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestNotLeaderCarriesLeaderID(t *testing.T) {
	err := NotLeader("node-2")
	assert.Equal(t, KindNotLeader, err.Kind)
	assert.Equal(t, "node-2", err.Leader)
}

func TestAs(t *testing.T) {
	err := New(KindNotFound, "missing")
	assert.True(t, As(err, KindNotFound))
	assert.False(t, As(err, KindValidation))
	assert.False(t, As(errors.New("plain"), KindNotFound))
}
