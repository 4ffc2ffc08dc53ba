package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "already canonical", in: "+918085745154", want: "+918085745154"},
		{name: "bare national number", in: "8085745154", want: "+918085745154"},
		{name: "country code without plus", in: "918085745154", want: "+918085745154"},
		{name: "double zero prefix", in: "00918085745154", want: "+918085745154"},
		{name: "separators stripped", in: "+91 80857-45154", want: "+918085745154"},
		{name: "surrounding whitespace", in: "  8085745154 ", want: "+918085745154"},
		{name: "letters rejected", in: "80857x5154", wantErr: true},
		{name: "too short", in: "12345", wantErr: true},
		{name: "plus in the middle", in: "8085+745154", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalizeDeterministic(t *testing.T) {
	first, err := Canonicalize("80857 45154")
	assert.NoError(t, err)

	for range 5 {
		again, err := Canonicalize("80857 45154")
		assert.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
