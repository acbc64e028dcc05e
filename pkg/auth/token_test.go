package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDeviceCodeRequiresClientID(t *testing.T) {
	_, err := GetDeviceCode("")
	assert.Error(t, err)
}

func TestGetTokenValidation(t *testing.T) {
	_, err := GetToken("", nil)
	assert.Error(t, err)

	_, err = GetToken("client-id", nil)
	assert.Error(t, err)
}
