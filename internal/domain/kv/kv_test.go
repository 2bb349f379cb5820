package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

func TestShouldSync(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"driverAuth", true},
		{"driverProfile", true},
		{"driverCars", true},
		{"driversList", true},
		{"driverScheduleByPlaca", true},
		{"trips", true},
		{"activeTripId", true},
		{"clientAuth", true},
		{"route:ABC123", true},
		{"live:ABC123", true},
		{"stops:ABC123", true},
		{"serviceRoute:ABC123", true},
		{"driverLedger:ABC123", true},
		{"tripTx:42", true},
		{"route:", true},
		{"mapCommand", false},
		{"theme", false},
		{"Trips", false},
		{"driverAuthX", false},
		{"xroute:ABC", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldSync(tt.key))
		})
	}
}

func TestEncodeValue(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(EncodeValue(`{"a":1}`)))
	assert.Equal(t, `42`, string(EncodeValue(`42`)))
	assert.Equal(t, `"ABC123"`, string(EncodeValue(`ABC123`)))
	assert.Equal(t, `"say \"hi\""`, string(EncodeValue(`say "hi"`)))
}

func TestNewEntry(t *testing.T) {
	e, err := NewEntry("trips", []byte(`[]`), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), e.Stamp)

	_, err = NewEntry("", []byte(`1`), 0)
	assert.True(t, apperror.IsValidation(err))
	_, err = NewEntry("trips", []byte(`{bad`), 0)
	assert.True(t, apperror.IsValidation(err))
	_, err = NewEntry("trips", []byte(`1`), -1)
	assert.True(t, apperror.IsValidation(err))
}

func TestMerge(t *testing.T) {
	stored := Entry{Key: "trips", Value: []byte(`[1]`), Stamp: 5}

	got, applied := Merge(stored, Entry{Key: "trips", Value: []byte(`[2]`), Stamp: 4})
	assert.False(t, applied)
	assert.Equal(t, stored, got)

	got, applied = Merge(stored, Entry{Key: "trips", Value: []byte(`[3]`), Stamp: 5})
	assert.True(t, applied)
	assert.JSONEq(t, `[3]`, string(got.Value))

	got, applied = Merge(stored, Entry{Key: "trips", Value: []byte(`[4]`)})
	assert.True(t, applied)
	assert.Equal(t, int64(5), got.Stamp)
	assert.JSONEq(t, `[4]`, string(got.Value))
}
