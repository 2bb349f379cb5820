package stop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truckledger/service-logistics/internal/domain/geo"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

func TestNew(t *testing.T) {
	s, err := New("abc123", 1, "Peaje", geo.Point{Lat: 4.60, Lng: -74.08}, "Cemento", "Tunja")
	require.NoError(t, err)

	assert.Equal(t, "ABC123", s.Plate())
	assert.Equal(t, 1, s.ID())
	assert.False(t, s.Delivered())
	assert.Nil(t, s.DeliveredAt())
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		plate string
		id    int
		label string
		pos   geo.Point
	}{
		{"no plate", "", 1, "Peaje", geo.Point{Lat: 4, Lng: -74}},
		{"no label", "ABC123", 1, " ", geo.Point{Lat: 4, Lng: -74}},
		{"zero id", "ABC123", 0, "Peaje", geo.Point{Lat: 4, Lng: -74}},
		{"bad position", "ABC123", 1, "Peaje", geo.Point{Lat: 95, Lng: -74}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.plate, tt.id, tt.label, tt.pos, "", "")
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestMarkDelivered_OneWay(t *testing.T) {
	s, err := New("ABC123", 1, "Peaje", geo.Point{Lat: 4.6, Lng: -74.08}, "", "")
	require.NoError(t, err)

	require.NoError(t, s.MarkDelivered(time.Now()))
	assert.True(t, s.Delivered())
	require.NotNil(t, s.DeliveredAt())

	err = s.MarkDelivered(time.Now())
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, NextID(nil))

	stops := []*Stop{
		Reconstruct("ABC123", 3, "a", geo.Point{}, false, "", "", nil, time.Now()),
		Reconstruct("ABC123", 7, "b", geo.Point{}, true, "", "", nil, time.Now()),
		Reconstruct("ABC123", 5, "c", geo.Point{}, false, "", "", nil, time.Now()),
	}
	assert.Equal(t, 8, NextID(stops))
}
