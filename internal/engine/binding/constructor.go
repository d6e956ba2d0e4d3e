package binding

import "cppbind/internal/engine/ast"

type Constructor struct {
	Owner     Name
	Params    []Param
	Protected bool
	Deleted   bool
	Location  ast.Location
}

func NewConstructor(c *ast.Constructor, owner Name, protected bool, subst Substitution) Constructor {
	return Constructor{
		Owner:     owner,
		Params:    renderParams(c.Params, subst),
		Protected: protected,
		Deleted:   c.Deleted,
		Location:  c.Location,
	}
}

// suppressed constructors produce no active registration line.
func (c Constructor) suppressed() bool {
	return c.Deleted || c.Protected || c.Panic()
}

func (c Constructor) Panic() bool {
	return hasRvalueParam(c.Params)
}

func (c Constructor) print(p Printer) {
	if c.Deleted || c.Protected {
		return
	}
	line := c.Owner.BindName() + ".def(py::init<" + joinParamTypes(c.Params) + ">());"
	if c.Panic() {
		line = "// " + line
	}
	p.Line(line)
}
