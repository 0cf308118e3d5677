package onenote

import "testing"

func TestParsePageSize(t *testing.T) {
	cases := []struct {
		in   uint8
		want PageSize
	}{
		{0, PageSizeAuto},
		{1, PageSizeUsLetter},
		{uint8(PageSizeExecutive), PageSizeExecutive},
		{uint8(PageSizeExecutive) + 1, PageSizeAuto},
		{255, PageSizeAuto},
	}
	for _, c := range cases {
		if got := parsePageSize(c.in); got != c.want {
			t.Errorf("parsePageSize(%d) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseNoteTagShape(t *testing.T) {
	cases := []struct {
		in   uint16
		want NoteTagShape
	}{
		{0, NoteTagShapeNone},
		{1, NoteTagShapeCheckbox},
		{2, NoteTagShapeCheckbox},
		{3, NoteTagShapeCheckbox},
		{4, NoteTagShapeOther},
		{149, NoteTagShapeOther},
	}
	for _, c := range cases {
		if got := parseNoteTagShape(c.in); got != c.want {
			t.Errorf("parseNoteTagShape(%d) = %v, want %v", c.in, got, c.want)
		}
	}
}
