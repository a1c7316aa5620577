package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type SegmentKind int

const (
	SegmentField     SegmentKind = iota // Name
	SegmentElement                      // []
	SegmentKey                          // [key]
	SegmentValue                        // [value]
	SegmentComponent                    // (N)
)

// PathSegment is one step of a FieldPath.
type PathSegment struct {
	Kind  SegmentKind
	Name  string // SegmentField only
	Index int    // SegmentComponent only
}

// FieldPath is a parsed node path relative to the root.
type FieldPath struct {
	Segments []PathSegment
}

// ParsePath parses a path string into a FieldPath.
// Supports: "Field", "Nested.Field", "Items[]", "Items[].ProductID",
// "Index[key]", "Index[value].Name", "Point(0)" and a leading "[]" for
// slice roots.
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []PathSegment

	for i := 0; i < len(path); {
		switch c := path[i]; {
		case c == '.':
			if i == 0 || i == len(path)-1 || !isIdentStart(path[i+1]) {
				return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
			}
			i++

		case isIdentStart(c):
			if len(segments) > 0 && path[i-1] != '.' {
				return FieldPath{}, fmt.Errorf("invalid path %q: missing '.' before %q", path, path[i:])
			}

			j := i + 1
			for j < len(path) && isIdentPart(path[j]) {
				j++
			}
			segments = append(segments, PathSegment{Kind: SegmentField, Name: path[i:j]})
			i = j

		case c == '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return FieldPath{}, fmt.Errorf("invalid path %q: unterminated '['", path)
			}

			switch inner := path[i+1 : i+end]; inner {
			case "":
				segments = append(segments, PathSegment{Kind: SegmentElement})
			case "key":
				segments = append(segments, PathSegment{Kind: SegmentKey})
			case "value":
				segments = append(segments, PathSegment{Kind: SegmentValue})
			default:
				return FieldPath{}, fmt.Errorf("invalid path %q: unknown index %q", path, inner)
			}
			i += end + 1

		case c == '(':
			end := strings.IndexByte(path[i:], ')')
			if end < 0 {
				return FieldPath{}, fmt.Errorf("invalid path %q: unterminated '('", path)
			}

			idx, err := strconv.Atoi(path[i+1 : i+end])
			if err != nil || idx < 0 {
				return FieldPath{}, fmt.Errorf("invalid path %q: invalid component index %q", path, path[i+1:i+end])
			}
			segments = append(segments, PathSegment{Kind: SegmentComponent, Index: idx})
			i += end + 1

		default:
			return FieldPath{}, fmt.Errorf("invalid path %q: unexpected %q", path, c)
		}
	}

	return FieldPath{Segments: segments}, nil
}

// String renders the path in the form produced by node.Node.RelPath.
func (p FieldPath) String() string {
	var sb strings.Builder

	for i, seg := range p.Segments {
		switch seg.Kind {
		case SegmentField:
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(seg.Name)
		case SegmentElement:
			sb.WriteString("[]")
		case SegmentKey:
			sb.WriteString("[key]")
		case SegmentValue:
			sb.WriteString("[value]")
		case SegmentComponent:
			sb.WriteString("(" + strconv.Itoa(seg.Index) + ")")
		}
	}

	return sb.String()
}

// Fields returns the field names along the path.
func (p FieldPath) Fields() []string {
	var out []string
	for _, seg := range p.Segments {
		if seg.Kind == SegmentField {
			out = append(out, seg.Name)
		}
	}

	return out
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}

	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}

	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
