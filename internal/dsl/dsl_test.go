package dsl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_SimpleVerbCall(t *testing.T) {
	prog, err := Parse(`(entity.register :name "Acme Corp" :jurisdiction "US" :as @entity_id)`)
	require.NoError(t, err)
	require.Len(t, prog.Forms, 1)

	f := prog.Forms[0]
	require.Equal(t, "entity.register", f.Verb)
	require.Equal(t, "entity", f.Domain())

	name, ok := f.StringArg("name")
	require.True(t, ok)
	require.Equal(t, "Acme Corp", name)

	jur, ok := f.StringArg("jurisdiction")
	require.True(t, ok)
	require.Equal(t, "US", jur)

	require.Equal(t, "entity_id", f.As)
}

func TestParse_NumbersListsMaps(t *testing.T) {
	prog, err := Parse(`(ownership.record :percentage 51.5 :ranks [1 2 3] :meta {:source "registry" :verified true})`)
	require.NoError(t, err)
	require.Len(t, prog.Forms, 1)

	f := prog.Forms[0]
	pct, ok := f.NumericArg("percentage")
	require.True(t, ok)
	require.InDelta(t, 51.5, pct, 0.0001)

	ranks, ok := f.ListArg("ranks")
	require.True(t, ok)
	require.Len(t, ranks, 3)
	require.Equal(t, VInteger(1), ranks[0])

	meta, ok := f.MapArg("meta")
	require.True(t, ok)
	require.Equal(t, VString("registry"), meta["source"])
	require.Equal(t, VBoolean(true), meta["verified"])
}

func TestParse_MultipleForms(t *testing.T) {
	prog, err := Parse(`
		(entity.register :name "A" :as @a)
		; a comment
		(entity.register :name "B" :as @b)
	`)
	require.NoError(t, err)
	require.Len(t, prog.Forms, 2)
	require.Equal(t, "a", prog.Forms[0].As)
	require.Equal(t, "b", prog.Forms[1].As)
}

func TestParse_IdentifierReference(t *testing.T) {
	prog, err := Parse(`(entity.link :entity_id @entity_id :related_id @other_id)`)
	require.NoError(t, err)
	f := prog.Forms[0]
	require.Equal(t, VIdentifier("entity_id"), f.Pairs["entity_id"])
	require.Equal(t, VIdentifier("other_id"), f.Pairs["related_id"])
}

func TestParse_NegativeAndFloatNumbers(t *testing.T) {
	prog, err := Parse(`(x.y :a -5 :b -3.25 :c 0.5)`)
	require.NoError(t, err)
	f := prog.Forms[0]
	require.Equal(t, VInteger(-5), f.Pairs["a"])
	require.Equal(t, VDouble(-3.25), f.Pairs["b"])
	require.Equal(t, VDouble(0.5), f.Pairs["c"])
}

func TestParse_ErrorUnterminatedForm(t *testing.T) {
	_, err := Parse(`(entity.register :name "Acme"`)
	require.Error(t, err)
}

func TestParse_ErrorMissingVerb(t *testing.T) {
	_, err := Parse(`(:name "Acme")`)
	require.Error(t, err)
}

func TestParse_ErrorUnterminatedString(t *testing.T) {
	_, err := Parse(`(entity.register :name "Acme)`)
	require.Error(t, err)
}

func TestParse_EscapesInString(t *testing.T) {
	prog, err := Parse(`(entity.register :name "line\nbreak \"quoted\"")`)
	require.NoError(t, err)
	name, ok := prog.Forms[0].StringArg("name")
	require.True(t, ok)
	require.Equal(t, "line\nbreak \"quoted\"", name)
}

func TestParse_EmptyProgram(t *testing.T) {
	prog, err := Parse(`   ; just a comment
	`)
	require.NoError(t, err)
	require.Empty(t, prog.Forms)
}
