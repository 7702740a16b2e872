package template

import (
	"fmt"
	"strings"

	"codearena/internal/judge/model"
)

// cGenerator emits C99 scaffolds. List returns use the out-parameter
// convention: the function takes a trailing `int* returnSize` and returns a
// pointer, because a bare C array carries no length. list<string> has no
// reasonable fixed-signature encoding in C and is rejected.
type cGenerator struct{}

const cListCap = 1024

func (cGenerator) paramDecl(p model.Parameter) (string, error) {
	switch p.Type {
	case model.TypeInt:
		return "int " + p.Name, nil
	case model.TypeFloat:
		return "double " + p.Name, nil
	case model.TypeString:
		return "char* " + p.Name, nil
	case model.TypeBool:
		return "bool " + p.Name, nil
	case model.TypeIntList:
		return fmt.Sprintf("int* %s, int %sSize", p.Name, p.Name), nil
	case model.TypeFloatList:
		return fmt.Sprintf("double* %s, int %sSize", p.Name, p.Name), nil
	}
	return "", unsupportedType("c", p.Type)
}

func (cGenerator) readBlock(p model.Parameter) (string, error) {
	switch p.Type {
	case model.TypeInt:
		return fmt.Sprintf("    read_line(line, sizeof(line));\n    int %s = atoi(line);", p.Name), nil
	case model.TypeFloat:
		return fmt.Sprintf("    read_line(line, sizeof(line));\n    double %s = atof(line);", p.Name), nil
	case model.TypeString:
		return fmt.Sprintf("    char %[1]s[4096];\n    read_line(%[1]s, sizeof(%[1]s));", p.Name), nil
	case model.TypeBool:
		return fmt.Sprintf("    read_line(line, sizeof(line));\n    bool %s = strcmp(line, \"true\") == 0;", p.Name), nil
	case model.TypeIntList:
		return fmt.Sprintf(`    read_line(line, sizeof(line));
    int %[1]s[%[2]d];
    int %[1]sSize = 0;
    for (char* tok = strtok(line, " \t"); tok != NULL && %[1]sSize < %[2]d; tok = strtok(NULL, " \t")) {
        %[1]s[%[1]sSize++] = atoi(tok);
    }`, p.Name, cListCap), nil
	case model.TypeFloatList:
		return fmt.Sprintf(`    read_line(line, sizeof(line));
    double %[1]s[%[2]d];
    int %[1]sSize = 0;
    for (char* tok = strtok(line, " \t"); tok != NULL && %[1]sSize < %[2]d; tok = strtok(NULL, " \t")) {
        %[1]s[%[1]sSize++] = atof(tok);
    }`, p.Name, cListCap), nil
	}
	return "", unsupportedType("c", p.Type)
}

func (cGenerator) callArgs(p model.Parameter) string {
	if p.Type.IsList() {
		return fmt.Sprintf("%s, %sSize", p.Name, p.Name)
	}
	return p.Name
}

func (g cGenerator) generate(spec model.FunctionSpec) (string, error) {
	params := make([]string, 0, len(spec.Parameters)+1)
	args := make([]string, 0, len(spec.Parameters)+1)
	reads := make([]string, 0, len(spec.Parameters))
	for _, p := range spec.Parameters {
		decl, err := g.paramDecl(p)
		if err != nil {
			return "", err
		}
		block, err := g.readBlock(p)
		if err != nil {
			return "", err
		}
		params = append(params, decl)
		args = append(args, g.callArgs(p))
		reads = append(reads, block)
	}

	var returnType, stubReturn, out string
	switch spec.ReturnType {
	case model.TypeInt, "":
		returnType, stubReturn = "int", "    return 0;"
		out = `    printf("%d\n", result);`
	case model.TypeFloat:
		returnType, stubReturn = "double", "    return 0.0;"
		out = `    printf("%g\n", result);`
	case model.TypeString:
		returnType, stubReturn = "char*", `    return "";`
		out = `    printf("%s\n", result);`
	case model.TypeBool:
		returnType, stubReturn = "bool", "    return false;"
		out = `    printf(result ? "true\n" : "false\n");`
	case model.TypeIntList:
		returnType = "int*"
		params = append(params, "int* returnSize")
		args = append(args, "&returnSize")
		stubReturn = "    *returnSize = 0;\n    return NULL;"
		out = `    printf("[");
    for (int i = 0; i < returnSize; i++) {
        printf(i + 1 < returnSize ? "%d, " : "%d", result[i]);
    }
    printf("]\n");`
	case model.TypeFloatList:
		returnType = "double*"
		params = append(params, "int* returnSize")
		args = append(args, "&returnSize")
		stubReturn = "    *returnSize = 0;\n    return NULL;"
		out = `    printf("[");
    for (int i = 0; i < returnSize; i++) {
        printf(i + 1 < returnSize ? "%g, " : "%g", result[i]);
    }
    printf("]\n");`
	default:
		return "", unsupportedType("c", spec.ReturnType)
	}

	var b strings.Builder
	b.WriteString("#include <stdio.h>\n#include <stdlib.h>\n#include <string.h>\n#include <stdbool.h>\n\n")
	b.WriteString("static void read_line(char* buf, size_t cap) {\n")
	b.WriteString("    if (fgets(buf, (int)cap, stdin) == NULL) {\n        buf[0] = '\\0';\n        return;\n    }\n")
	b.WriteString("    buf[strcspn(buf, \"\\r\\n\")] = '\\0';\n}\n\n")
	fmt.Fprintf(&b, "%s %s(%s) {\n", returnType, spec.Name, strings.Join(params, ", "))
	b.WriteString("    // Write your code here\n")
	b.WriteString(stubReturn)
	b.WriteString("\n}\n\n")
	b.WriteString("int main(void) {\n    char line[65536];\n")
	if spec.ReturnType.IsList() {
		b.WriteString("    int returnSize = 0;\n")
	}
	for _, r := range reads {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "    %s result = %s(%s);\n", returnType, spec.Name, strings.Join(args, ", "))
	b.WriteString(out)
	b.WriteString("\n    return 0;\n}\n")
	return b.String(), nil
}
