package choice_test

import (
	"context"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	embedded "github.com/cory-johannsen/eoschar/content"
	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/choice"
	"github.com/cory-johannsen/eoschar/internal/game/content"
)

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
	Fatalf(format string, args ...any)
}

func catalog(t testingT) *content.Catalog {
	t.Helper()
	cat, err := content.Load(content.FSProvider{FS: embedded.FS})
	require.NoError(t, err)
	return cat
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

func newSheet(t testingT, logger *zap.Logger) *character.Sheet {
	t.Helper()
	return character.NewSheet(catalog(t), logger)
}

// firstPicker always takes the first option and never skips.
type firstPicker struct {
	requests []choice.PickRequest
}

func (p *firstPicker) Pick(_ context.Context, req choice.PickRequest) (int, error) {
	p.requests = append(p.requests, req)
	return 0, nil
}

// namedPicker picks options by name and skips optional requests it has no name for.
type namedPicker map[choice.Phase]string

func (p namedPicker) Pick(_ context.Context, req choice.PickRequest) (int, error) {
	want, ok := p[req.Phase]
	if ok {
		for i, o := range req.Options {
			if o == want {
				return i, nil
			}
		}
	}
	if req.Optional {
		return -1, nil
	}
	return 0, nil
}

func findChild(t testingT, n *choice.Node, name string) *choice.Node {
	t.Helper()
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("%s has no child %q (children: %v)", n.Name, name, n.ChildNames())
	return nil
}
