package album

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  street  ", "Street"},
		{"title cases words", "new york", "New York"},
		{"lowercases the rest", "nEW yORK", "New York"},
		{"keeps acronyms", "NYC", "NYC"},
		{"trims around acronyms", "  NYC ", "NYC"},
		{"lowercase acronym is title cased", "nyc", "Nyc"},
		{"whitespace only", "   ", ""},
		{"empty", "", ""},
		{"digits only are not all-upper", "1984", "1984"},
		{"mixed digits and caps kept", "NYC18", "NYC18"},
		{"hyphenated", "black-and-white", "Black-And-White"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLabel(tt.in))
		})
	}
}

func TestNormalizeLabel_AllCapsWithSpaces(t *testing.T) {
	assert.Equal(t, "NEW YORK", NormalizeLabel("NEW YORK"))
}
