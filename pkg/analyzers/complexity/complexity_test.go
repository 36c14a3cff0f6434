package complexity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
)

func analyzeSource(t *testing.T, src string) Result {
	t.Helper()

	p, err := pysyntax.NewParser()
	require.NoError(t, err)

	tree, err := p.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	res, err := Analyze(tree)
	require.NoError(t, err)

	return res
}

func scores(res Result) map[string]int {
	out := make(map[string]int, len(res.Blocks))

	for _, b := range res.Blocks {
		out[b.Name] = b.Complexity
	}

	return out
}

func TestAnalyze_SimpleFunction(t *testing.T) {
	t.Parallel()

	res := analyzeSource(t, "def f():\n    return 1\n")

	require.Len(t, res.Blocks, 1)
	assert.Equal(t, Block{Name: "f", Kind: KindFunction, Line: 1, Complexity: 1}, res.Blocks[0])
	assert.Equal(t, 1, res.Sum())
	assert.Equal(t, 1, res.Module)
	assert.Equal(t, 2, res.Total)
}

func TestAnalyze_Branches(t *testing.T) {
	t.Parallel()

	src := `def g(x):
    if x > 1 and x < 5:
        return 1
    elif x == 0:
        return 2
    else:
        return 3
`

	assert.Equal(t, map[string]int{"g": 4}, scores(analyzeSource(t, src)))
}

func TestAnalyze_LoopsTryComprehension(t *testing.T) {
	t.Parallel()

	src := `def h(items):
    for i in items:
        pass
    else:
        pass
    while False:
        pass
    try:
        pass
    except ValueError:
        pass
    except KeyError:
        pass
    else:
        pass
    return [x for x in items if x]
`

	assert.Equal(t, map[string]int{"h": 9}, scores(analyzeSource(t, src)))
}

func TestAnalyze_ClosuresAreNotBlocks(t *testing.T) {
	t.Parallel()

	src := `def outer():
    def inner():
        if True:
            return 1
    return inner
`

	res := analyzeSource(t, src)

	assert.Equal(t, map[string]int{"outer": 1}, scores(res))
	assert.Equal(t, 2, res.Total)
}

func TestAnalyze_ClassWithMethods(t *testing.T) {
	t.Parallel()

	src := `class A:
    def a(self):
        if self:
            return 1

    def b(self):
        return 2
`

	res := analyzeSource(t, src)

	require.Len(t, res.Blocks, 3)
	assert.Equal(t, KindClass, res.Blocks[0].Kind)
	assert.Equal(t, 3, res.Blocks[0].Complexity)
	assert.Equal(t, Block{Name: "a", Kind: KindMethod, Line: 2, Complexity: 2}, res.Blocks[1])
	assert.Equal(t, Block{Name: "b", Kind: KindMethod, Line: 6, Complexity: 1}, res.Blocks[2])
	assert.Equal(t, 5, res.Total)
}

func TestAnalyze_ClassWithoutMethods(t *testing.T) {
	t.Parallel()

	res := analyzeSource(t, "class B:\n    x = 1 if y else 2\n")

	assert.Equal(t, map[string]int{"B": 2}, scores(res))
}

func TestAnalyze_ModuleLevelDecisions(t *testing.T) {
	t.Parallel()

	res := analyzeSource(t, "if x:\n    pass\nf = lambda v: 1 if v else 2\n")

	assert.Empty(t, res.Blocks)
	assert.Equal(t, 3, res.Module)
	assert.Equal(t, 3, res.Total)
}

func TestAnalyze_Match(t *testing.T) {
	t.Parallel()

	src := `def m(cmd):
    match cmd:
        case "a":
            return 1
        case "b" if cmd:
            return 2
        case _:
            return 3
`

	assert.Equal(t, map[string]int{"m": 3}, scores(analyzeSource(t, src)))
}

func TestAnalyze_DecoratedAndAssert(t *testing.T) {
	t.Parallel()

	src := `@decorator
def a(x):
    assert x
`

	assert.Equal(t, map[string]int{"a": 2}, scores(analyzeSource(t, src)))
}

func TestAnalyze_Empty(t *testing.T) {
	t.Parallel()

	res := analyzeSource(t, "")

	assert.Empty(t, res.Blocks)
	assert.Equal(t, 1, res.Total)
}

func TestAnalyze_SyntaxError(t *testing.T) {
	t.Parallel()

	p, err := pysyntax.NewParser()
	require.NoError(t, err)

	tree, err := p.Parse(context.Background(), []byte("def broken(:\n"))
	require.NoError(t, err)

	_, err = Analyze(tree)
	require.ErrorIs(t, err, pysyntax.ErrSyntax)

	_, err = Analyze(nil)
	require.ErrorIs(t, err, pysyntax.ErrSyntax)
}
