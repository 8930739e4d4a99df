package utils_test

import (
	"testing"

	"github.com/mentorhub/bookings/utils"
	"github.com/stretchr/testify/assert"
)

func TestValidSignature(t *testing.T) {
	secret := "whsec-test"
	body := []byte(`{"triggerEvent":"PING","payload":{}}`)

	signature := utils.ComputeSignature(secret, body)
	assert.True(t, utils.ValidSignature(secret, body, signature))
}

func TestValidSignature_Mismatches(t *testing.T) {
	secret := "whsec-test"
	body := []byte(`{"triggerEvent":"PING","payload":{}}`)
	signature := utils.ComputeSignature(secret, body)

	assert.False(t, utils.ValidSignature(secret, body, ""), "empty signature")
	assert.False(t, utils.ValidSignature(secret, body, "deadbeef"), "wrong signature")
	assert.False(t, utils.ValidSignature("other-secret", body, signature), "wrong secret")
	assert.False(t, utils.ValidSignature(secret, []byte(`tampered`), signature), "tampered body")
}
