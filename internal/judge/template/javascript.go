package template

import (
	"fmt"
	"strings"

	"codearena/internal/judge/model"
)

type javascriptGenerator struct{}

func (javascriptGenerator) readStmt(p model.Parameter, line int) (string, error) {
	switch p.Type {
	case model.TypeInt:
		return fmt.Sprintf("    const %s = parseInt(lines[%d], 10);", p.Name, line), nil
	case model.TypeFloat:
		return fmt.Sprintf("    const %s = parseFloat(lines[%d]);", p.Name, line), nil
	case model.TypeString:
		return fmt.Sprintf("    const %s = lines[%d];", p.Name, line), nil
	case model.TypeBool:
		return fmt.Sprintf("    const %s = lines[%d].trim() === \"true\";", p.Name, line), nil
	case model.TypeIntList, model.TypeFloatList:
		return fmt.Sprintf("    const %s = lines[%d].split(/\\s+/).filter(Boolean).map(Number);", p.Name, line), nil
	case model.TypeStringList:
		return fmt.Sprintf("    const %s = lines[%d].split(/\\s+/).filter(Boolean);", p.Name, line), nil
	}
	return "", unsupportedType("javascript", p.Type)
}

func (g javascriptGenerator) generate(spec model.FunctionSpec) (string, error) {
	names := make([]string, 0, len(spec.Parameters))
	reads := make([]string, 0, len(spec.Parameters))
	for i, p := range spec.Parameters {
		stmt, err := g.readStmt(p, i)
		if err != nil {
			return "", err
		}
		names = append(names, p.Name)
		reads = append(reads, stmt)
	}

	var printStmt string
	switch {
	case spec.ReturnType.IsList():
		printStmt = `    console.log("[" + result.join(", ") + "]");`
	case spec.ReturnType == model.TypeBool:
		printStmt = `    console.log(result ? "true" : "false");`
	case spec.ReturnType == model.TypeInt, spec.ReturnType == model.TypeFloat,
		spec.ReturnType == model.TypeString, spec.ReturnType == "":
		printStmt = "    console.log(result);"
	default:
		return "", unsupportedType("javascript", spec.ReturnType)
	}

	paramList := strings.Join(names, ", ")
	var b strings.Builder
	fmt.Fprintf(&b, "function %s(%s) {\n", spec.Name, paramList)
	b.WriteString("    // Write your code here\n\n}\n\n")
	b.WriteString("const readline = require('readline');\n")
	b.WriteString("const rl = readline.createInterface({ input: process.stdin });\n\n")
	b.WriteString("const lines = [];\n")
	b.WriteString("rl.on('line', (line) => {\n    lines.push(line);\n});\n\n")
	b.WriteString("rl.on('close', () => {\n")
	for _, r := range reads {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "    const result = %s(%s);\n", spec.Name, paramList)
	b.WriteString(printStmt)
	b.WriteString("\n});\n")
	return b.String(), nil
}
