// Package passes implements the return elimination pass.
//
// RemoveReturn rewrites every binding of a document that contains a
// ReturnStatement into an equivalent tree built only from blocks,
// conditions, temporaries and records. Bindings without a return are left
// untouched.
package passes

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/noreturn/internal/document"
	"github.com/gnolang/noreturn/internal/expr"
	tt "github.com/gnolang/noreturn/internal/types"
)

// ErrStrayReturn is returned when a return statement survives the rewrite,
// which happens when a return is nested inside an expression kind that
// cannot contain one.
var ErrStrayReturn = errors.New("return statement left after rewrite")

// Options controls RemoveReturn.
type Options struct {
	Logger *zap.Logger
	// Namer mints temporary names. A fresh Namer is used when nil; callers
	// that run the pass several times in one compilation must share one.
	Namer *Namer
	// Parallel processes components concurrently.
	Parallel bool
	// Unchecked skips the stray return check.
	Unchecked bool
	// KeepOriginals stores a copy of every rewritten expression in its
	// Change.
	KeepOriginals bool
}

// Change describes one rewritten binding.
type Change struct {
	Component   string
	Binding     string
	ReturnType  tt.Type
	Temporaries []string
	Original    expr.Expression
}

// Transform rewrites a single root expression. It reports false, and
// returns root unchanged, when root contains no return statement.
func Transform(root expr.Expression, names *Namer) (out expr.Expression, temps []string, ok bool) {
	retTy, ok := ReturnType(root)
	if !ok {
		return root, nil, false
	}
	r := &remover{retTy: retTy, names: names}
	out = r.toExpression(r.processExpression(root, nil), retTy)
	return out, r.temps, true
}

// ReturnType returns the value type of the first return statement of root
// in pre-order, or Void for a return without a value. It reports false when
// root contains no return.
func ReturnType(root expr.Expression) (tt.Type, bool) {
	ret, ok := expr.FirstReturn(root)
	if !ok {
		return nil, false
	}
	if ret.Value == nil {
		return tt.Void{}, true
	}
	return ret.Value.Ty(), true
}

// RemoveReturn rewrites every expression of doc in place and returns the
// changes, ordered by component.
func RemoveReturn(ctx context.Context, doc *document.Document, opts Options) ([]Change, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	names := opts.Namer
	if names == nil {
		names = NewNamer()
	}

	components := doc.Components()
	changes := make([][]Change, len(components))

	if !opts.Parallel {
		for i, c := range components {
			var err error
			if changes[i], err = processComponent(ctx, c, names, opts, logger); err != nil {
				return nil, err
			}
		}
		return flatten(changes), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range components {
		g.Go(func() error {
			var err error
			changes[i], err = processComponent(gctx, c, names, opts, logger)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return flatten(changes), nil
}

func processComponent(
	ctx context.Context,
	c *document.Component,
	names *Namer,
	opts Options,
	logger *zap.Logger,
) ([]Change, error) {
	var (
		changes []Change
		err     error
	)
	document.VisitAllExpressions(c, func(slot *expr.Expression, b *document.Binding) {
		if err != nil {
			return
		}
		if err = ctx.Err(); err != nil {
			return
		}

		retTy, ok := ReturnType(*slot)
		if !ok {
			return
		}
		var original expr.Expression
		if opts.KeepOriginals {
			original = expr.Clone(*slot)
		}
		out, temps, _ := Transform(*slot, names)
		if !opts.Unchecked {
			if ret, found := expr.FirstReturn(out); found {
				err = fmt.Errorf("%w: component %s, binding %s: %s", ErrStrayReturn, c.Name, b.Name, ret)
				return
			}
		}
		*slot = out

		changes = append(changes, Change{
			Component:   c.Name,
			Binding:     b.Name,
			ReturnType:  retTy,
			Temporaries: temps,
			Original:    original,
		})
		logger.Debug("removed return statements",
			zap.String("component", c.Name),
			zap.String("binding", b.Name),
			zap.Strings("temporaries", temps),
		)
	})
	return changes, err
}

func flatten(changes [][]Change) []Change {
	var out []Change
	for _, c := range changes {
		out = append(out, c...)
	}
	return out
}
