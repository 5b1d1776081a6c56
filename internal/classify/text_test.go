package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairContext(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		want    bool
	}{
		{"repair verb near keyword", "Repair existing rear deck", "deck", true},
		{"replace boards", "Replace existing deck boards", "deck", true},
		{"rebuild is repair", "rebuild front porch steps", "porch", true},
		{"construction overrides repair", "Construct new deck and repair stairs", "deck", false},
		{"no repair verb", "Proposed rear deck", "deck", false},
		{"keyword absent", "Repair existing porch", "garage", false},
		{"empty keyword", "Repair existing porch", "", false},
		{"repair outside window", "Repair of the front foundation wall and parging along the north side, also a rear deck", "deck", false},
		{"case insensitive", "REFINISH GARAGE SLAB", "garage", true},
		{"longer word before keyword", "Repair existing decking boards at side entrance and separately a proposed rear deck off the family room", "deck", false},
		{"only longer word present", "Repair existing decking", "deck", false},
		{"plural keyword", "Repair both front porches", "porch", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairContext(tt.text, tt.keyword))
		})
	}
}

func TestExtractStoreys(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"2 storey rear addition", 2},
		{"Proposed 3-storey addition", 3},
		{"two-storey detached dwelling", 2},
		{"Three Storey addition", 3},
		{"single storey rear addition", 1},
		{"2 storey and three storey wings", 2},
		{"12 stories residential", 12},
		{"rear addition", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractStoreys(tt.text))
		})
	}
}

func TestNormalize_FoldsCompatibilityForms(t *testing.T) {
	assert.Equal(t, "2 storey addition", normalize("２ Storey Addition"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 2, clamp(0, 2, 6))
	assert.Equal(t, 4, clamp(4, 2, 6))
	assert.Equal(t, 6, clamp(11, 2, 6))
}
