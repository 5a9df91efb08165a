package factory

import (
	"reflect"

	"github.com/mewkiz/preon/codec"
	"github.com/mewkiz/preon/meta"
)

// choiceFactory builds codec.ChoiceCodec for any field whose descriptor
// carries Options.Choices — a discriminated union (spec.md §4.7),
// registered ahead of every other sub-factory so a Choices-bearing field
// never falls through to a plain scalar/list/object codec for its
// declared (usually interface) type.
type choiceFactory struct{}

func (choiceFactory) Accept(t reflect.Type, opts meta.Options) bool {
	return len(opts.Choices) > 0
}

func (choiceFactory) Build(t reflect.Type, opts meta.Options, ctx *Context) (codec.Codec, error) {
	branches := make([]codec.ChoiceBranch, 0, len(opts.Choices))
	for _, choice := range opts.Choices {
		// The branch's own fields parse against whatever scope the
		// choice field itself sits in, the same way a plain field's
		// Options do (see objectFactory.Build) — so a branch struct's
		// "outer" reaches the discriminant's siblings, not a redundant
		// duplicate of the branch type's own fields.
		branchCodec, err := ctx.BuildField(choice.GoType, meta.Options{}, ctx.RefContext())
		if err != nil {
			return nil, err
		}
		guardExpr, err := ctx.ParseExpr(choice.Guard)
		if err != nil {
			return nil, err
		}
		branches = append(branches, codec.ChoiceBranch{Guard: guardExpr, Codec: branchCodec})
	}
	return &codec.ChoiceCodec{GoType: t, Branches: branches}, nil
}
