package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verificationInput struct {
	AccountID string `validate:"required,nid"`
	Password  string `validate:"required,password"`
	Code      string `validate:"omitempty,otpcode"`
}

func TestV10ValidatorCustomRules(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name       string
		input      verificationInput
		wantFields []string
	}{
		{
			name:  "valid input",
			input: verificationInput{AccountID: "735269466602", Password: "Password1", Code: "123456"},
		},
		{
			name:       "account id too short",
			input:      verificationInput{AccountID: "12345", Password: "Password1"},
			wantFields: []string{"account_id"},
		},
		{
			name:       "account id with letter",
			input:      verificationInput{AccountID: "73526946660a", Password: "Password1"},
			wantFields: []string{"account_id"},
		},
		{
			name:       "account id too long",
			input:      verificationInput{AccountID: "7352694666021", Password: "Password1"},
			wantFields: []string{"account_id"},
		},
		{
			name:       "password all lowercase",
			input:      verificationInput{AccountID: "735269466602", Password: "password"},
			wantFields: []string{"password"},
		},
		{
			name:       "password too short",
			input:      verificationInput{AccountID: "735269466602", Password: "Pass1"},
			wantFields: []string{"password"},
		},
		{
			name:       "password without digit",
			input:      verificationInput{AccountID: "735269466602", Password: "Passwords"},
			wantFields: []string{"password"},
		},
		{
			name:  "password with exactly the minimum",
			input: verificationInput{AccountID: "735269466602", Password: "Passwd12"},
		},
		{
			name:       "code with five digits",
			input:      verificationInput{AccountID: "735269466602", Password: "Password1", Code: "12345"},
			wantFields: []string{"code"},
		},
		{
			name:       "code with letters",
			input:      verificationInput{AccountID: "735269466602", Password: "Password1", Code: "12a456"},
			wantFields: []string{"code"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.input)
			if len(tc.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)

			var verr V10ValidationError
			require.True(t, errors.As(err, &verr))
			for _, field := range tc.wantFields {
				assert.Contains(t, verr.Values(), field)
			}
		})
	}
}

func TestV10ValidatorRequired(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	err = v.Validate(verificationInput{})
	require.Error(t, err)

	var verr V10ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Values(), "account_id")
	assert.Contains(t, verr.Values(), "password")
	assert.NotContains(t, verr.Values(), "code")
}
