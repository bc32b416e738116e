package rejection

import (
	"reflect"
	"testing"
)

func TestExtractDrugCodes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single code",
			text: "Therapeutic duplication with 06285096001065",
			want: []string{"06285096001065"},
		},
		{
			name: "dotted and dashed code",
			text: "use 845-02.1 instead",
			want: []string{"845-02.1"},
		},
		{
			name: "duplicates collapsed",
			text: "code 123 duplicates code 123",
			want: []string{"123"},
		},
		{
			name: "no codes",
			text: "not medically necessary",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractDrugCodes(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractDrugCodes(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
