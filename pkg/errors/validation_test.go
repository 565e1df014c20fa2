package errors

import (
	"math"
	"testing"
)

func TestValidateLatLon(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		wantErr  bool
	}{
		{"origin", 0, 0, false},
		{"berlin", 52.52, 13.405, false},
		{"poles and antimeridian", -90, 180, false},

		{"lat too large", 90.5, 0, true},
		{"lon too small", 0, -180.1, true},
		{"nan", math.NaN(), 0, true},
		{"inf", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLatLon(tt.lat, tt.lon)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLatLon(%v, %v) error = %v, wantErr %v", tt.lat, tt.lon, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCoordinate) {
				t.Errorf("ValidateLatLon(%v, %v) code = %v, want %v", tt.lat, tt.lon, GetCode(err), ErrCodeInvalidCoordinate)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "graphs/city.json", false},
		{"absolute", "/var/lib/regionroute/city.json", false},

		{"empty", "", true},
		{"null byte", "city\x00.json", true},
		{"control char", "city\x01.json", true},
		{"too long", string(make([]byte, 5000)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOneOf(t *testing.T) {
	if err := ValidateOneOf("mode", "through", "through", "around"); err != nil {
		t.Errorf("ValidateOneOf(through) error = %v, want nil", err)
	}
	err := ValidateOneOf("mode", "sideways", "through", "around")
	if err == nil {
		t.Fatal("ValidateOneOf(sideways) error = nil, want non-nil")
	}
	if want := `invalid mode "sideways" (want one of: through, around)`; UserMessage(err) != want {
		t.Errorf("UserMessage() = %q, want %q", UserMessage(err), want)
	}
}
