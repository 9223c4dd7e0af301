package assembler

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// declareMacro handles the operands of a macro directive: an identifier
// followed by an integer literal. It returns how many tokens it used.
func (asm *Assembler) declareMacro(num int, rest []string) (int, error) {
	if len(rest) < 2 {
		return 0, syntaxErr(num, MacroKeyword, ErrMacroSyntax)
	}

	id, value := rest[0], rest[1]
	if err := ValidateIdentifier(id); err != nil {
		return 0, syntaxErr(num, id, err)
	}

	lit, ok, err := ParseInteger(value)
	if !ok {
		return 0, syntaxErr(num, value, errors.Wrap(ErrMacroSyntax, "value is not an integer literal"))
	}
	if err != nil {
		return 0, syntaxErr(num, value, err)
	}

	if err := asm.symbols.DeclareMacro(id, lit); err != nil {
		return 0, semanticErr(num, id, err)
	}
	asm.declared[id] = num
	asm.log.WithFields(logrus.Fields{
		"line":  num,
		"macro": id,
		"kind":  lit.Kind.Resolve(),
		"value": lit.Value,
	}).Debug("macro declared")
	return 2, nil
}
