package shared

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	URL string `json:"url" validate:"required,url"`
}

type selfValidating struct {
	ok bool
}

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("not ok")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	req := httptest.NewRequest(
		"POST", "/", bytes.NewBufferString(`{"url":"https://leetcode.com/problems/two-sum/"}`))

	var target decodeTarget
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "https://leetcode.com/problems/two-sum/", target.URL)

	req = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"url":`))
	assert.Error(t, DecodeJSON(req, &target))
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(decodeTarget{URL: "https://leetcode.com/problems/two-sum/"}))
	assert.Error(t, ValidateRequest(decodeTarget{}))
	assert.Error(t, ValidateRequest(decodeTarget{URL: "not a url"}))
}

func TestValidateRequestPrefersValidateMethod(t *testing.T) {
	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.Error(t, ValidateRequest(selfValidating{ok: false}))
}
