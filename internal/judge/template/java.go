package template

import (
	"fmt"
	"strings"

	"codearena/internal/judge/model"
)

type javaGenerator struct{}

var javaTypes = map[model.SemanticType]string{
	model.TypeInt:        "int",
	model.TypeFloat:      "double",
	model.TypeString:     "String",
	model.TypeBool:       "boolean",
	model.TypeIntList:    "int[]",
	model.TypeFloatList:  "double[]",
	model.TypeStringList: "String[]",
}

var javaZero = map[string]string{
	"int":     "0",
	"double":  "0.0",
	"boolean": "false",
}

func (javaGenerator) readBlock(p model.Parameter) (string, error) {
	switch p.Type {
	case model.TypeInt:
		return fmt.Sprintf("        int %s = Integer.parseInt(scanner.nextLine().trim());", p.Name), nil
	case model.TypeFloat:
		return fmt.Sprintf("        double %s = Double.parseDouble(scanner.nextLine().trim());", p.Name), nil
	case model.TypeString:
		return fmt.Sprintf("        String %s = scanner.nextLine();", p.Name), nil
	case model.TypeBool:
		return fmt.Sprintf("        boolean %s = scanner.nextLine().trim().equals(\"true\");", p.Name), nil
	case model.TypeIntList:
		return fmt.Sprintf(`        String[] %[1]sTokens = scanner.nextLine().trim().split("\\s+");
        int[] %[1]s = new int[%[1]sTokens.length];
        for (int i = 0; i < %[1]sTokens.length; i++) {
            %[1]s[i] = Integer.parseInt(%[1]sTokens[i]);
        }`, p.Name), nil
	case model.TypeFloatList:
		return fmt.Sprintf(`        String[] %[1]sTokens = scanner.nextLine().trim().split("\\s+");
        double[] %[1]s = new double[%[1]sTokens.length];
        for (int i = 0; i < %[1]sTokens.length; i++) {
            %[1]s[i] = Double.parseDouble(%[1]sTokens[i]);
        }`, p.Name), nil
	case model.TypeStringList:
		return fmt.Sprintf("        String[] %[1]s = scanner.nextLine().trim().split(\"\\\\s+\");", p.Name), nil
	}
	return "", unsupportedType("java", p.Type)
}

func (g javaGenerator) generate(spec model.FunctionSpec) (string, error) {
	params := make([]string, 0, len(spec.Parameters))
	names := make([]string, 0, len(spec.Parameters))
	reads := make([]string, 0, len(spec.Parameters))
	for _, p := range spec.Parameters {
		javaType, ok := javaTypes[p.Type]
		if !ok {
			return "", unsupportedType("java", p.Type)
		}
		params = append(params, fmt.Sprintf("%s %s", javaType, p.Name))
		names = append(names, p.Name)
		block, err := g.readBlock(p)
		if err != nil {
			return "", err
		}
		reads = append(reads, block)
	}

	returnType := "Object"
	if spec.ReturnType != "" {
		t, ok := javaTypes[spec.ReturnType]
		if !ok {
			return "", unsupportedType("java", spec.ReturnType)
		}
		returnType = t
	}
	zero, ok := javaZero[returnType]
	if !ok {
		zero = "null"
	}

	var out string
	switch {
	case spec.ReturnType.IsList():
		out = `        System.out.print("[");
        for (int i = 0; i < result.length; i++) {
            System.out.print(result[i]);
            if (i + 1 < result.length) System.out.print(", ");
        }
        System.out.println("]");`
	default:
		out = "        System.out.println(result);"
	}

	var b strings.Builder
	b.WriteString("import java.util.*;\n\npublic class Solution {\n")
	fmt.Fprintf(&b, "    public static %s %s(%s) {\n", returnType, spec.Name, strings.Join(params, ", "))
	b.WriteString("        // Write your code here\n")
	fmt.Fprintf(&b, "        return %s;\n    }\n\n", zero)
	b.WriteString("    public static void main(String[] args) {\n")
	b.WriteString("        Scanner scanner = new Scanner(System.in);\n")
	for _, r := range reads {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "        %s result = %s(%s);\n", returnType, spec.Name, strings.Join(names, ", "))
	b.WriteString(out)
	b.WriteString("\n        scanner.close();\n    }\n}\n")
	return b.String(), nil
}
