package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/duynguyendang/sir/pkg/common/errors"
	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/pattern"
)

type assertRecorder struct {
	NopObserver
	asserted []kb.Fact
}

func (r *assertRecorder) FactAsserted(f kb.Fact) {
	r.asserted = append(r.asserted, f)
}

func TestKnowledgeService_AssertFactNormalisesAndPairs(t *testing.T) {
	store := kb.NewStore()
	svc := NewKnowledgeService(store, WithLogger(zap.NewNop()))

	f := svc.AssertFact("  Fluff ", kb.MemberOf, "CAT")
	assert.Equal(t, kb.NewFact("fluff", kb.MemberOf, "cat"), f)
	assert.Equal(t, []kb.Fact{
		kb.NewFact("fluff", kb.MemberOf, "cat"),
		kb.NewFact("cat", kb.HasMember, "fluff"),
	}, store.Facts())
}

func TestKnowledgeService_QueryPath(t *testing.T) {
	svc := NewKnowledgeService(kb.NewStore())
	svc.AssertFact("cat", kb.MemberOf, "mammal")
	svc.AssertFact("fluff", kb.MemberOf, "cat")

	res, err := svc.QueryPath("Fluff", "e*ms*me*", "mammal")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, []string{"mm"}, res.Paths)

	res, err = svc.QueryPath("fluff", "e*ms*e*", "dog")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.NotNil(t, res.Paths)
	assert.Empty(t, res.Paths)
}

func TestKnowledgeService_QueryPathRejectsBadPattern(t *testing.T) {
	store := kb.NewStore()
	svc := NewKnowledgeService(store)
	svc.AssertFact("a", kb.SubsetOf, "b")
	before := store.Facts()

	_, err := svc.QueryPath("a", "*s", "b")
	assert.ErrorIs(t, err, pattern.ErrInvalidPattern)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, before, store.Facts())
}

func TestKnowledgeService_QueryAnyMergesPaths(t *testing.T) {
	svc := NewKnowledgeService(kb.NewStore())
	svc.AssertFact("fluff", kb.MemberOf, "cat")
	svc.AssertFact("cat", kb.Possesses, "collar")
	svc.AssertFact("fluff", kb.Possesses, "collar")

	res, err := svc.QueryAny("fluff", []string{"e*s*e*pe*", "e*ms*e*pe*", "p"}, "collar")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, []string{"p", "mp"}, res.Paths)
	assert.Len(t, res.Chains, 2)
}

func TestKnowledgeService_TracedSharesStore(t *testing.T) {
	store := kb.NewStore()
	svc := NewKnowledgeService(store)
	rec := &assertRecorder{}
	traced := svc.Traced(rec)

	traced.AssertFact("a", kb.EquivalentTo, "b")
	svc.AssertFact("b", kb.EquivalentTo, "c")

	assert.Equal(t, 4, store.Len())
	assert.Equal(t, []kb.Fact{
		kb.NewFact("a", kb.EquivalentTo, "b"),
		kb.NewFact("b", kb.EquivalentTo, "a"),
	}, rec.asserted)

	res, err := traced.QueryPath("a", "e*", "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"ee"}, res.Paths)
}
