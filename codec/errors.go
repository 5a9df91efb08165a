package codec

import "fmt"

// A DecodingError is raised when a codec fails to read a value from a
// BitBuffer: a guard or length expression fails to evaluate, a branch
// of a ChoiceCodec has no matching guard, or the buffer underlying the
// read raises its own error.
type DecodingError struct {
	Path string
	Msg  string
}

func (e *DecodingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("preon: decoding error: %s", e.Msg)
	}
	return fmt.Sprintf("preon: decoding error at %s: %s", e.Path, e.Msg)
}

// An EncodingError is raised when a codec fails to write a value to a
// BitChannel: an offset binding has already been passed by the
// sequential writer, a value's runtime type or length disagrees with
// its static binding, or no ChoiceCodec branch's guard accepts the
// value being encoded.
type EncodingError struct {
	Path string
	Msg  string
}

func (e *EncodingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("preon: encoding error: %s", e.Msg)
	}
	return fmt.Sprintf("preon: encoding error at %s: %s", e.Path, e.Msg)
}
