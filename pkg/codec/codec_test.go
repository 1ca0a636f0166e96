package codec_test

import (
	"testing"

	"github.com/argus-labs/titan/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type height struct {
	Cm int `json:"cm"`
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	bz, err := codec.Encode(height{Cm: 180})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cm":180}`, string(bz))

	got, err := codec.Decode[height](bz)
	require.NoError(t, err)
	assert.Equal(t, height{Cm: 180}, got)
}

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    height
		wantErr bool
	}{
		{name: "known fields", input: `{"cm":12}`, want: height{Cm: 12}},
		{name: "unknown field", input: `{"cm":12,"inches":5}`, wantErr: true},
		{name: "wrong type", input: `{"cm":"tall"}`, wantErr: true},
		{name: "not json", input: `{`, wantErr: true},
		{name: "trailing value", input: `{"cm":1} {"cm":2}`, wantErr: true},
		{name: "trailing whitespace", input: "{\"cm\":3} \n\t", want: height{Cm: 3}},
		{name: "trailing brace", input: `{"cm":1}}`, wantErr: true},
		{name: "trailing bracket", input: `{"cm":1} ]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := codec.DecodeStrict[height]([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
