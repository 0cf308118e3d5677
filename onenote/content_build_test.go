package onenote

import (
	"testing"

	"github.com/go-test/deep"

	"github.com/runbark/onestore/onestore"
)

func TestBuildRichText(t *testing.T) {
	ps := propertySetOf(
		onestore.Property{
			ID:    onestore.PropertyId{ID: propRichEditTextUnicode, Type: onestore.PropertyTypeFourBytesOfLengthFollowedByData},
			Value: onestore.PropertyValue{Bytes: []byte{'H', 0x00, 'i', 0x00}},
		},
		onestore.Property{
			ID: onestore.PropertyId{ID: propIsTitleText, Type: onestore.PropertyTypeBool, BoolValue: true},
		},
	)

	got := buildRichText(ps)
	want := &RichText{Text: "Hi", IsTitleText: true}

	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("buildRichText diff: %v", diff)
	}
}
