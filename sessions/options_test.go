package sessions

import (
	"errors"
	"testing"

	herrors "github.com/caio-sobreiro/bidsheuristic/errors"
)

func TestOptionsValidate(t *testing.T) {
	valid := timestampOptions(2)

	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr bool
	}{
		{"Valid", func(o *Options) {}, false},
		{"MissingProject", func(o *Options) { o.Project = "" }, true},
		{"MissingPrefix", func(o *Options) { o.Prefix = "" }, true},
		{"BadSortKey", func(o *Options) { o.SortKey = "acquired" }, true},
		{"ZeroOrdinal", func(o *Options) { o.FirstOrdinal = 0 }, true},
		{"BadSubjectSource", func(o *Options) { o.Subjects = "" }, true},
		{"NegativePad", func(o *Options) { o.SubjectPad = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			err := o.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, herrors.ErrInvalidOptions) {
				t.Errorf("Validate() error = %v, should wrap ErrInvalidOptions", err)
			}
		})
	}
}

func TestOptionsLabel(t *testing.T) {
	o := Options{Prefix: "CONTE", FirstOrdinal: 1}
	if got := o.Label(0); got != "CONTE1" {
		t.Errorf("Label(0) = %q, want CONTE1", got)
	}
	o.FirstOrdinal = 2
	if got := o.Label(9); got != "CONTE11" {
		t.Errorf("Label(9) = %q, want CONTE11", got)
	}
}

func TestPadLabel(t *testing.T) {
	tests := []struct {
		label string
		width int
		want  string
	}{
		{"123", 6, "000123"},
		{"000123", 6, "000123"},
		{"1234567", 6, "1234567"},
		{"", 3, "000"},
	}

	for _, tt := range tests {
		if got := PadLabel(tt.label, tt.width); got != tt.want {
			t.Errorf("PadLabel(%q, %d) = %q, want %q", tt.label, tt.width, got, tt.want)
		}
	}
}
