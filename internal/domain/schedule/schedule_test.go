package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []Day
	}{
		{"nil", nil, []Day{}},
		{"unknown dropped", []string{"Funday", ""}, []Day{}},
		{"ordered monday first", []string{"Domingo", "Lunes", "Viernes"}, []Day{Lunes, Viernes, Domingo}},
		{"duplicates removed", []string{"martes", "MARTES", "Martes"}, []Day{Martes}},
		{"accents optional", []string{"sabado", "miercoles"}, []Day{Miercoles, Sabado}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeJSON(t *testing.T) {
	legacy := NormalizeJSON([]byte(`["Jueves","Lunes"]`))
	assert.Equal(t, []Day{Lunes, Jueves}, legacy.Outbound)
	assert.Empty(t, legacy.Return)

	spanish := NormalizeJSON([]byte(`{"ida":["Lunes"],"regreso":["Viernes"]}`))
	assert.Equal(t, Days{Outbound: []Day{Lunes}, Return: []Day{Viernes}}, spanish)

	garbage := NormalizeJSON([]byte(`42`))
	assert.Equal(t, Days{Outbound: []Day{}, Return: []Day{}}, garbage)
}

func TestDayOf(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)

	// 2025-10-05 is a Sunday.
	assert.Equal(t, Domingo, DayOf(time.Date(2025, 10, 5, 12, 0, 0, 0, bogota)))
	assert.Equal(t, Lunes, DayOf(time.Date(2025, 10, 6, 0, 30, 0, 0, bogota)))
}

func TestDueOn(t *testing.T) {
	a, err := New("abc123", []string{"Lunes"}, []string{"Viernes"})
	require.NoError(t, err)
	b, err := New("XYZ987", []string{"Viernes"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "ABC123", a.Plate)

	due := DueOn([]*Schedule{a, b}, Viernes)
	require.Len(t, due, 2)
	assert.Equal(t, Due{Plate: "ABC123", Day: Viernes, Returns: true}, due[0])
	assert.Equal(t, Due{Plate: "XYZ987", Day: Viernes, Departs: true}, due[1])

	assert.Empty(t, DueOn([]*Schedule{a, b}, Martes))
}

func TestNew_RequiresPlate(t *testing.T) {
	_, err := New(" ", nil, nil)
	assert.Error(t, err)
}

func TestParseDay_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				if d, ok := ParseDay("miércoles"); !ok || d != Miercoles {
					errs <- "miércoles parsed as " + string(d)
					return
				}
				if d, ok := ParseDay("SABADO"); !ok || d != Sabado {
					errs <- "SABADO parsed as " + string(d)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
