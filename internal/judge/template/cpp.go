package template

import (
	"fmt"
	"strings"

	"codearena/internal/judge/model"
)

type cppGenerator struct{}

var cppTypes = map[model.SemanticType]string{
	model.TypeInt:        "int",
	model.TypeFloat:      "double",
	model.TypeString:     "string",
	model.TypeBool:       "bool",
	model.TypeIntList:    "vector<int>",
	model.TypeFloatList:  "vector<double>",
	model.TypeStringList: "vector<string>",
}

func (cppGenerator) readBlock(p model.Parameter) (string, error) {
	cppType, ok := cppTypes[p.Type]
	if !ok {
		return "", unsupportedType("cpp", p.Type)
	}
	var b strings.Builder
	b.WriteString("    getline(cin, line);\n")
	switch p.Type {
	case model.TypeInt:
		fmt.Fprintf(&b, "    int %s = stoi(line);", p.Name)
	case model.TypeFloat:
		fmt.Fprintf(&b, "    double %s = stod(line);", p.Name)
	case model.TypeString:
		fmt.Fprintf(&b, "    string %s = line;", p.Name)
	case model.TypeBool:
		fmt.Fprintf(&b, "    bool %s = (line == \"true\");", p.Name)
	default:
		elem := cppTypes[p.Type.Element()]
		fmt.Fprintf(&b, "    %s %s;\n", cppType, p.Name)
		b.WriteString("    {\n        istringstream iss(line);\n")
		fmt.Fprintf(&b, "        %s v;\n", elem)
		fmt.Fprintf(&b, "        while (iss >> v) %s.push_back(v);\n    }", p.Name)
	}
	return b.String(), nil
}

func (g cppGenerator) generate(spec model.FunctionSpec) (string, error) {
	params := make([]string, 0, len(spec.Parameters))
	names := make([]string, 0, len(spec.Parameters))
	reads := make([]string, 0, len(spec.Parameters))
	for _, p := range spec.Parameters {
		cppType, ok := cppTypes[p.Type]
		if !ok {
			return "", unsupportedType("cpp", p.Type)
		}
		if p.Type.IsList() || p.Type == model.TypeString {
			params = append(params, fmt.Sprintf("%s& %s", cppType, p.Name))
		} else {
			params = append(params, fmt.Sprintf("%s %s", cppType, p.Name))
		}
		names = append(names, p.Name)
		block, err := g.readBlock(p)
		if err != nil {
			return "", err
		}
		reads = append(reads, block)
	}

	returnType := "auto"
	if spec.ReturnType != "" {
		t, ok := cppTypes[spec.ReturnType]
		if !ok {
			return "", unsupportedType("cpp", spec.ReturnType)
		}
		returnType = t
	}

	var out string
	switch {
	case spec.ReturnType.IsList() && spec.ReturnType != "":
		out = `    cout << "[";
    for (size_t i = 0; i < result.size(); i++) {
        cout << result[i];
        if (i + 1 < result.size()) cout << ", ";
    }
    cout << "]" << endl;`
	case spec.ReturnType == model.TypeBool:
		out = `    cout << (result ? "true" : "false") << endl;`
	default:
		out = "    cout << result << endl;"
	}

	var b strings.Builder
	b.WriteString("#include <iostream>\n#include <sstream>\n#include <string>\n#include <vector>\nusing namespace std;\n\n")
	fmt.Fprintf(&b, "%s %s(%s) {\n", returnType, spec.Name, strings.Join(params, ", "))
	b.WriteString("    // Write your code here\n\n}\n\n")
	b.WriteString("int main() {\n    string line;\n")
	for _, r := range reads {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "    auto result = %s(%s);\n", spec.Name, strings.Join(names, ", "))
	b.WriteString(out)
	b.WriteString("\n    return 0;\n}\n")
	return b.String(), nil
}
