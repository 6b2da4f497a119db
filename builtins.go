package contextfree

// builtinNames maps the grammar's three built-in primitive names to
// their RuleKind. SQUARE/CIRCLE/TRIANGLE are unit shapes centered on
// the origin with a built-in size of 1; the fourth primitive kind, RulePath, has no
// fixed name here since every path rule is named by its `path`
// directive.
var builtinNames = map[string]RuleKind{
	"SQUARE":   RuleSquare,
	"CIRCLE":   RuleCircle,
	"TRIANGLE": RuleTriangle,
}

// RegisterBuiltins installs the grammar's primitive shape rules into
// prog, so expansion can dispatch SQUARE/CIRCLE/TRIANGLE references the
// same way it dispatches any other rule name. Call this once after
// parsing and before Engine.Expand.
func RegisterBuiltins(prog *Program) {
	for name, kind := range builtinNames {
		if _, exists := prog.Rules[name]; exists {
			continue
		}
		prog.AddRule(&Rule{Name: name, Kind: kind, Weight: 1})
	}
}
