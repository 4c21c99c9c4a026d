package mapbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Message
		err  error
	}{
		{
			name: "edit",
			raw:  `{"type":"edit","id":"abc"}`,
			want: Message{Type: TypeEdit, ID: "abc"},
		},
		{
			name: "delete",
			raw:  `{"type":"delete","id":"abc"}`,
			want: Message{Type: TypeDelete, ID: "abc"},
		},
		{
			name: "coordinates",
			raw:  `{"type":"coordinates","lat":-7.78,"lng":110.36}`,
			want: Message{Type: TypeCoordinates, Lat: f64(-7.78), Lng: f64(110.36)},
		},
		{
			name: "initial location",
			raw:  `{"type":"initialLocation","lat":0,"lng":0}`,
			want: Message{Type: TypeInitialLocation, Lat: f64(0), Lng: f64(0)},
		},
		{
			name: "not json",
			raw:  `tap marker`,
			err:  ErrMalformed,
		},
		{
			name: "unknown type",
			raw:  `{"type":"zoom","id":"abc"}`,
			err:  ErrUnknownType,
		},
		{
			name: "empty type",
			raw:  `{"id":"abc"}`,
			err:  ErrUnknownType,
		},
		{
			name: "edit without id",
			raw:  `{"type":"edit"}`,
			err:  ErrMissingID,
		},
		{
			name: "delete without id",
			raw:  `{"type":"delete","id":""}`,
			err:  ErrMissingID,
		},
		{
			name: "coordinates without lat",
			raw:  `{"type":"coordinates","lng":110.36}`,
			err:  ErrBadCoordinates,
		},
		{
			name: "initial location without lng",
			raw:  `{"type":"initialLocation","lat":-7.78}`,
			err:  ErrBadCoordinates,
		},
		{
			name: "non-numeric lat",
			raw:  `{"type":"coordinates","lat":"north","lng":110.36}`,
			err:  ErrMalformed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.raw))
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func f64(v float64) *float64 { return &v }
