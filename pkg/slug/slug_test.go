package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Running Shoes", "running-shoes"},
		{"Café Crème", "cafe-creme"},
		{"  Hello   World!  ", "hello-world"},
		{"Ürün Çeşitleri", "urun-cesitleri"},
		{"100% Cotton T-Shirt", "100-cotton-t-shirt"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}
