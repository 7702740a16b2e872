package template

import (
	"fmt"
	"strings"

	"codearena/internal/judge/model"
)

type pythonGenerator struct{}

func (pythonGenerator) readStmt(p model.Parameter) (string, error) {
	switch p.Type {
	case model.TypeInt:
		return fmt.Sprintf("    %s = int(input())", p.Name), nil
	case model.TypeFloat:
		return fmt.Sprintf("    %s = float(input())", p.Name), nil
	case model.TypeString:
		return fmt.Sprintf("    %s = input()", p.Name), nil
	case model.TypeBool:
		return fmt.Sprintf("    %s = input().strip().lower() == \"true\"", p.Name), nil
	case model.TypeIntList:
		return fmt.Sprintf("    %s = [int(e) for e in input().split()]", p.Name), nil
	case model.TypeFloatList:
		return fmt.Sprintf("    %s = [float(e) for e in input().split()]", p.Name), nil
	case model.TypeStringList:
		return fmt.Sprintf("    %s = input().split()", p.Name), nil
	}
	return "", unsupportedType("python", p.Type)
}

func (g pythonGenerator) generate(spec model.FunctionSpec) (string, error) {
	names := make([]string, 0, len(spec.Parameters))
	reads := make([]string, 0, len(spec.Parameters))
	for _, p := range spec.Parameters {
		stmt, err := g.readStmt(p)
		if err != nil {
			return "", err
		}
		names = append(names, p.Name)
		reads = append(reads, stmt)
	}

	var printStmt string
	switch {
	case spec.ReturnType.IsList():
		printStmt = `    print("[" + ", ".join(str(e) for e in result) + "]")`
	case spec.ReturnType == model.TypeBool:
		printStmt = `    print("true" if result else "false")`
	case spec.ReturnType == model.TypeInt, spec.ReturnType == model.TypeFloat,
		spec.ReturnType == model.TypeString, spec.ReturnType == "":
		printStmt = "    print(result)"
	default:
		return "", unsupportedType("python", spec.ReturnType)
	}

	paramList := strings.Join(names, ", ")
	var b strings.Builder
	fmt.Fprintf(&b, "def %s(%s):\n", spec.Name, paramList)
	b.WriteString("    # Write your code here\n")
	b.WriteString("    pass\n\n\n")
	b.WriteString("if __name__ == \"__main__\":\n")
	for _, r := range reads {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "    result = %s(%s)\n", spec.Name, paramList)
	b.WriteString(printStmt)
	b.WriteByte('\n')
	return b.String(), nil
}
