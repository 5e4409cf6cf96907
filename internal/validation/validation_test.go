package validation_test

import (
	"testing"

	"github.com/isometry/netbox-catalyst-bridge/internal/validation"
	"github.com/stretchr/testify/assert"
)

const (
	testSecret = "key"
	testBody   = `{"key": "value"}`
)

func TestSign(t *testing.T) {
	sig := validation.Sign([]byte(testBody), testSecret)
	assert.Len(t, sig, 128)
	assert.Equal(t, sig, validation.Sign([]byte(testBody), testSecret))
	assert.NotEqual(t, sig, validation.Sign([]byte(testBody), "other"))
}

func TestVerify(t *testing.T) {
	bodies := [][]byte{
		[]byte(testBody),
		[]byte(`{"data":{"description":"x","custom_fields":{"catalyst_interface_uuid":"u"}}}`),
		{},
		{0x00, 0xff, 0x10},
	}

	for _, body := range bodies {
		sig := validation.Sign(body, testSecret)
		assert.True(t, validation.Verify(body, sig, testSecret))

		// Every single-bit flip of the body must fail.
		for i := range body {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte(nil), body...)
				mutated[i] ^= 1 << bit
				assert.False(t, validation.Verify(mutated, sig, testSecret), "body byte %d bit %d", i, bit)
			}
		}

		// Every single-bit flip of the signature must fail.
		for i := range sig {
			for bit := 0; bit < 8; bit++ {
				mutated := []byte(sig)
				mutated[i] ^= 1 << bit
				assert.False(t, validation.Verify(body, string(mutated), testSecret), "signature byte %d bit %d", i, bit)
			}
		}
	}
}

func TestVerify_EmptySecret(t *testing.T) {
	for _, sig := range []string{"", "garbage", validation.Sign([]byte(testBody), "other")} {
		assert.True(t, validation.Verify([]byte(testBody), sig, ""))
	}
}

func TestVerify_MissingSignature(t *testing.T) {
	assert.False(t, validation.Verify([]byte(testBody), "", testSecret))
}

func TestWebhookSecret_ValidateSignature(t *testing.T) {
	valid := validation.Sign([]byte(testBody), testSecret)

	testCases := []struct {
		Name        string
		Headers     map[string]string
		Body        string
		ExpectError error
	}{
		{
			Name:        "missing_header",
			Headers:     map[string]string{},
			Body:        testBody,
			ExpectError: validation.ErrMissingSignature,
		},
		{
			Name:        "empty_header",
			Headers:     map[string]string{"x-hook-signature": ""},
			Body:        testBody,
			ExpectError: validation.ErrMissingSignature,
		},
		{
			Name:        "invalid_signature_value",
			Headers:     map[string]string{"x-hook-signature": "invalid"},
			Body:        testBody,
			ExpectError: validation.ErrSignatureMismatch,
		},
		{
			Name:        "signature_for_other_body",
			Headers:     map[string]string{"x-hook-signature": valid},
			Body:        `{"key": "other"}`,
			ExpectError: validation.ErrSignatureMismatch,
		},
		{
			Name:    "valid_signature_sha512",
			Headers: map[string]string{"x-hook-signature": valid},
			Body:    testBody,
		},
	}

	_inst := validation.NewWebhookSecret(testSecret)
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			err := _inst.ValidateSignature([]byte(tc.Body), tc.Headers, validation.DefaultSignatureHeader)
			if tc.ExpectError == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.ExpectError)
			}
		})
	}
}

func TestWebhookSecret_Insecure(t *testing.T) {
	var nilSecret *validation.WebhookSecret
	assert.True(t, nilSecret.Insecure())
	assert.True(t, validation.NewWebhookSecret("").Insecure())
	assert.False(t, validation.NewWebhookSecret(testSecret).Insecure())

	assert.NoError(t, validation.NewWebhookSecret("").ValidateSignature([]byte(testBody), nil, validation.DefaultSignatureHeader))
	assert.NoError(t, nilSecret.ValidateSignature([]byte(testBody), nil, validation.DefaultSignatureHeader))
}
