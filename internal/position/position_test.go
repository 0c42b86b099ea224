package position

import "testing"

func TestHMSDMS(t *testing.T) {
	tests := []struct {
		p    Position
		want string
	}{
		{Position{RA: 10.625, Dec: 41.2}, "00h42m30s +41d12m00s"},
		{Position{RA: 234.56, Dec: -78.9}, "15h38m14s -78d54m00s"},
		{Position{RA: 0, Dec: 0}, "00h00m00s +00d00m00s"},
		{Position{RA: 359.99999, Dec: -0.5}, "00h00m00s -00d30m00s"},
		{Position{RA: 180, Dec: -0.0000001}, "12h00m00s +00d00m00s"},
		{Position{RA: 7199.6 / 240, Dec: 10.9999}, "02h00m00s +11d00m00s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.p.HMSDMS(); got != tt.want {
				t.Errorf("HMSDMS() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		p    Position
		want string
	}{
		{Position{RA: 234.56, Dec: -78.9}, "234.56 -78.9"},
		{Position{RA: 10.625, Dec: 41.2}, "10.625 41.2"},
		{Position{RA: 1.234567, Dec: -0.00001}, "1.2346 0"},
		{Position{RA: 0, Dec: 90}, "0 90"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.p.Decimal(); got != tt.want {
				t.Errorf("Decimal() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRAsDecs(t *testing.T) {
	ps := []Position{{RA: 1, Dec: -1}, {RA: 2, Dec: -2}}
	ras, decs := RAs(ps), Decs(ps)
	if len(ras) != 2 || ras[0] != 1 || ras[1] != 2 {
		t.Errorf("RAs = %v", ras)
	}
	if len(decs) != 2 || decs[0] != -1 || decs[1] != -2 {
		t.Errorf("Decs = %v", decs)
	}
}
