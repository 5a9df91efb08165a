// Package meta extracts binding metadata from Go struct tags. A codec
// built from a struct type needs, for each field, the bit width and
// byte order to decode it with and the EL source for any conditional,
// length, or offset that governs it; this package is where that
// information is read out of the type and turned into a plain
// descriptor the factory pipeline can consume without touching
// reflection again.
package meta

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A FieldDescriptor is the binding metadata for one field of a struct
// being turned into an ObjectCodec. Index is the field's position in
// the Go struct, suitable for reflect.Value.Field.
type FieldDescriptor struct {
	// Name is the Go field name.
	Name string
	// Index is the field's position within the struct.
	Index int
	// GoType is the field's Go type.
	GoType reflect.Type
	// Options carries the binding's optional modifiers.
	Options Options
}

// Options carries the optional modifiers of a binding, each expressed
// as EL source to be parsed against the enclosing struct's reference
// context. An empty string means the modifier is absent.
type Options struct {
	// Bits is the field's width in bits. 0 means "use the natural
	// width of GoType" (8/16/32/64 for the sized integer kinds).
	Bits int
	// Endian is "big" or "little"; empty defaults to big-endian.
	Endian string
	// If is a Boolean EL expression; when present and false at decode
	// time the field is skipped and left at its zero value.
	If string
	// Length is an Integer EL expression giving an explicit element or
	// byte count, for list- and string-valued fields.
	Length string
	// Offset is an Integer EL expression giving an absolute bit offset
	// the field is read from or written to, out of sequence with its
	// neighbors.
	Offset string
	// Terminator, if non-empty, names the byte value (as a decimal or
	// "0x"-prefixed literal) that ends a list field in lieu of an
	// explicit Length. On a string field its presence selects
	// zero-byte termination; the byte value it names is not used.
	Terminator string
	// Choices lists the discriminated-union branches for a field whose
	// concrete type is chosen by a guard at decode time. Struct tags
	// cannot name a Go type, so branches are registered separately
	// through StructTagSource.SetChoices and merged in here.
	Choices []ChoiceOption
	// Charset names the string encoding a string-valued field's bytes
	// are read/written under ("ascii" or "utf8"). Empty defaults to
	// "utf8".
	Charset string
	// Init is an EL expression giving the value a field takes when its
	// If guard is false, instead of its Go zero value.
	Init string
}

// A ChoiceOption is one guarded branch of a discriminated union: when
// Guard evaluates true (or, for the final branch, unconditionally),
// the field is decoded as GoType.
type ChoiceOption struct {
	// Guard is a Boolean EL expression, or empty for the default branch.
	Guard string
	// GoType is the concrete type selected when Guard holds.
	GoType reflect.Type
}

// MetadataSource produces the FieldDescriptors for a struct type. The
// factory pipeline's object sub-factory asks its configured source for
// a struct type's fields each time it builds a codec for that type; the
// result is not cached.
type MetadataSource interface {
	// Fields returns the binding metadata for t's exported fields, in
	// declaration order. t must be a struct type.
	Fields(t reflect.Type) ([]FieldDescriptor, error)
}

// StructTagSource is a MetadataSource that reads binding options from
// `preon:"..."` struct tags. Each tag is a comma-separated list of
// key=value modifiers; a bare key with no '=' is read with an empty
// value, which leaves if, length, offset and init absent and is
// rejected by the other keys. An unadorned `preon:"-"` tag
// excludes the field from the codec entirely.
//
// Since a struct tag cannot name a Go type, discriminated-union
// branches are registered out of band through SetChoices rather than
// written into the tag.
type StructTagSource struct {
	choices map[reflect.Type]map[string][]ChoiceOption
}

// NewStructTagSource returns an empty StructTagSource.
func NewStructTagSource() *StructTagSource {
	return &StructTagSource{choices: make(map[reflect.Type]map[string][]ChoiceOption)}
}

// SetChoices registers the discriminated-union branches for the named
// field of struct type t. It must be called before t is handed to the
// factory pipeline.
func (s *StructTagSource) SetChoices(t reflect.Type, field string, choices []ChoiceOption) {
	m, ok := s.choices[t]
	if !ok {
		m = make(map[string][]ChoiceOption)
		s.choices[t] = m
	}
	m[field] = choices
}

// Fields implements MetadataSource.
func (s *StructTagSource) Fields(t reflect.Type) ([]FieldDescriptor, error) {
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("meta: %s is not a struct type", t)
	}
	var fields []FieldDescriptor
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			// Unexported field: not addressable from outside the
			// package, so it cannot be decoded into.
			continue
		}
		tag, ok := sf.Tag.Lookup("preon")
		if ok && tag == "-" {
			continue
		}
		opts, err := parseTag(tag)
		if err != nil {
			return nil, errors.Wrapf(err, "meta: field %s.%s", t, sf.Name)
		}
		if m, ok := s.choices[t]; ok {
			if choices, ok := m[sf.Name]; ok {
				opts.Choices = choices
			}
		}
		fields = append(fields, FieldDescriptor{
			Name:    sf.Name,
			Index:   i,
			GoType:  sf.Type,
			Options: opts,
		})
	}
	return fields, nil
}

// parseTag parses the body of a `preon:"..."` tag into an Options
// value. Recognized keys: bits, endian, if, length, offset, term,
// charset, init.
func parseTag(tag string) (Options, error) {
	var opts Options
	if tag == "" {
		return opts, nil
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, hasVal := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "bits":
			if !hasVal {
				return opts, errors.Errorf("meta: tag modifier %q requires a value", key)
			}
			n, err := strconv.Atoi(val)
			if err != nil {
				return opts, errors.Wrapf(err, "meta: invalid bits value %q", val)
			}
			opts.Bits = n
		case "endian":
			if val != "big" && val != "little" {
				return opts, errors.Errorf("meta: invalid endian value %q; want \"big\" or \"little\"", val)
			}
			opts.Endian = val
		case "if":
			opts.If = val
		case "length":
			opts.Length = val
		case "offset":
			opts.Offset = val
		case "term":
			if err := parseTerminator(val); err != nil {
				return opts, err
			}
			opts.Terminator = val
		case "charset":
			if val != "ascii" && val != "utf8" {
				return opts, errors.Errorf("meta: unknown charset %q; want \"ascii\" or \"utf8\"", val)
			}
			opts.Charset = val
		case "init":
			opts.Init = val
		default:
			return opts, errors.Errorf("meta: unknown tag modifier %q", key)
		}
	}
	return opts, nil
}

// parseTerminator validates that s denotes a single byte value, as a
// decimal literal or a "0x"-prefixed hexadecimal one.
func parseTerminator(s string) error {
	n, err := strconv.ParseInt(s, 0, 16)
	if err != nil {
		return errors.Wrapf(err, "meta: invalid terminator %q", s)
	}
	if n < 0 || n > 0xFF {
		return errors.Errorf("meta: terminator %q out of byte range", s)
	}
	return nil
}
