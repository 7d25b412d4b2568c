package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/sfahub/internal/domain/models"
)

type stubGeocoder struct {
	calls int
	err   error
}

func (s *stubGeocoder) Geocode(_ context.Context, _, _ string) (float64, float64, error) {
	s.calls++
	if s.err != nil {
		return 0, 0, s.err
	}
	return 35.0, 139.0, nil
}

func TestLocate(t *testing.T) {
	lat := 1.0
	tests := []struct {
		name      string
		cust      models.Customer
		key       string
		err       error
		wantCall  bool
		wantFound bool
	}{
		{"fills", models.Customer{Address1: "Tokyo"}, "k", nil, true, true},
		{"partial coordinates", models.Customer{Address1: "Tokyo", Latitude: &lat}, "k", nil, true, true},
		{"already located", models.Customer{Address1: "Tokyo", Latitude: &lat, Longitude: &lat}, "k", nil, false, false},
		{"no key", models.Customer{Address1: "Tokyo"}, "", nil, false, false},
		{"no address", models.Customer{Address1: "  "}, "k", nil, false, false},
		{"lookup fails", models.Customer{Address1: "Tokyo"}, "k", ErrNoResult, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &stubGeocoder{err: tt.err}
			c := tt.cust
			changed, err := Locate(context.Background(), g, tt.key, &c)
			if (g.calls > 0) != tt.wantCall {
				t.Errorf("calls = %d, wantCall %v", g.calls, tt.wantCall)
			}
			if changed != tt.wantFound {
				t.Errorf("changed = %v, want %v", changed, tt.wantFound)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
			if changed && (*c.Latitude != 35.0 || *c.Longitude != 139.0) {
				t.Errorf("coordinates = %v,%v", *c.Latitude, *c.Longitude)
			}
		})
	}
}
