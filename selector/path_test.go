package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		fields []string
		kinds  []SegmentKind
	}{
		{"Name", []string{"Name"}, []SegmentKind{SegmentField}},
		{"Items[].ProductID", []string{"Items", "ProductID"}, []SegmentKind{SegmentField, SegmentElement, SegmentField}},
		{"Index[key]", []string{"Index"}, []SegmentKind{SegmentField, SegmentKey}},
		{"Index[value].Tags[]", []string{"Index", "Tags"}, []SegmentKind{SegmentField, SegmentValue, SegmentField, SegmentElement}},
		{"Origin(1)", []string{"Origin"}, []SegmentKind{SegmentField, SegmentComponent}},
		{"[].Name", []string{"Name"}, []SegmentKind{SegmentElement, SegmentField}},
		{"Grid[][]", []string{"Grid"}, []SegmentKind{SegmentField, SegmentElement, SegmentElement}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			p, err := ParsePath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.fields, p.Fields())

			kinds := make([]SegmentKind, len(p.Segments))
			for i, s := range p.Segments {
				kinds[i] = s.Kind
			}
			assert.Equal(t, tt.kinds, kinds)
			assert.Equal(t, tt.in, p.String())
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", ".Name", "Name.", "a..b", "Items[", "Items[0]", "Point(x)", "Point(-1)", "a[]b", "a.[]", "a-b"} {
		_, err := ParsePath(in)
		assert.Error(t, err, in)
	}
}
