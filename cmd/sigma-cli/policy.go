package sigmacli

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/key"
	"github.com/zutxo/sigma/value"
)

// Policy is a spending condition written in TOML. It is compiled to a
// script with its keys as segregated constants.
//
//	MinHeight = 100
//	[Root]
//	Kind = "threshold"
//	K = 2
//	[[Root.Children]]
//	Kind = "key"
//	Key = "alice"
type Policy struct {
	// MinHeight, when positive, requires the spending height to be at
	// least MinHeight.
	MinHeight int32
	Root      PolicyNode
}

// PolicyNode is a key or a connective over child nodes. Kind is one of
// "key", "and", "or", "threshold".
type PolicyNode struct {
	Kind     string
	Key      string
	K        int32
	Children []PolicyNode
}

var errPolicy = errors.New("invalid policy")

// loadPolicy decodes the policy file at path.
func loadPolicy(path string) (*Policy, error) {
	p := new(Policy)
	md, err := toml.DecodeFile(path, p)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown field %s", errPolicy, undecoded[0])
	}
	return p, nil
}

// compiler turns a policy into a tree, resolving key names to public keys.
type compiler struct {
	store     key.Store
	constants []value.Value
}

// Compile returns the script of p. Public keys are read from store.
func (p *Policy) Compile(store key.Store) (*ast.ErgoTree, error) {
	c := &compiler{store: store}
	root, err := c.node(p.Root)
	if err != nil {
		return nil, err
	}
	if p.MinHeight > 0 {
		cond := ast.Relation{Kind: ast.GE, Left: ast.Height{}, Right: c.constant(value.Int(p.MinHeight))}
		root = ast.SigmaAnd{Items: []ast.Expr{ast.BoolToSigmaProp{Input: cond}, root}}
	}
	return ast.NewTree(0, root, c.constants...), nil
}

func (c *compiler) constant(v value.Value) ast.Expr {
	c.constants = append(c.constants, v)
	return ast.ConstantPlaceholder{Index: len(c.constants) - 1, Type: v.Type()}
}

func (c *compiler) node(n PolicyNode) (ast.Expr, error) {
	switch n.Kind {
	case "key":
		return c.leaf(n.Key)
	case "and", "or", "threshold":
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", errPolicy, n.Kind)
	}
	if len(n.Children) == 0 {
		return nil, fmt.Errorf("%w: %s without children", errPolicy, n.Kind)
	}
	items := make([]ast.Expr, len(n.Children))
	for i, child := range n.Children {
		e, err := c.node(child)
		if err != nil {
			return nil, err
		}
		items[i] = e
	}
	switch n.Kind {
	case "and":
		return ast.SigmaAnd{Items: items}, nil
	case "or":
		return ast.SigmaOr{Items: items}, nil
	default:
		return ast.AtLeast{
			Bound: c.constant(value.Int(n.K)),
			Input: ast.ConcreteCollection{Elem: value.TSigmaProp, Items: items},
		}, nil
	}
}

func (c *compiler) leaf(name string) (ast.Expr, error) {
	pub, err := c.store.LoadPublic(name)
	if err != nil {
		return nil, fmt.Errorf("key %q: %w", name, err)
	}
	return c.constant(value.SigmaProp{Prop: pub.Image}), nil
}
