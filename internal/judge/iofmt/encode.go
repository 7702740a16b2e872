// Package iofmt renders structured test-case input into the line-oriented
// stdin the generated scaffolds read.
package iofmt

import (
	"bytes"
	"encoding/json"
	"strings"

	"codearena/internal/judge/model"
	appErr "codearena/pkg/errors"
)

// EncodeStdin converts a test case's input into stdin text. A JSON object is
// rendered one line per declared parameter in declaration order: scalars as
// bare literals, lists as whitespace-joined tokens. Anything that does not
// look like a JSON object passes through unchanged (raw line-oriented tests
// skip JSON parsing entirely).
func EncodeStdin(params []model.Parameter, inputData string) (string, error) {
	trimmed := strings.TrimSpace(inputData)
	if !strings.HasPrefix(trimmed, "{") {
		return inputData, nil
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var values map[string]interface{}
	if err := dec.Decode(&values); err != nil {
		return "", appErr.Wrapf(err, appErr.InputMalformed, "parse structured input failed")
	}
	if dec.More() {
		return "", appErr.New(appErr.InputMalformed).WithMessage("trailing data after structured input")
	}

	if len(values) != len(params) {
		return "", appErr.Newf(appErr.InputMalformed,
			"structured input has %d values, function declares %d parameters", len(values), len(params))
	}

	var b bytes.Buffer
	for i, p := range params {
		v, ok := values[p.Name]
		if !ok {
			return "", appErr.Newf(appErr.InputMalformed, "structured input is missing parameter %q", p.Name)
		}
		line, err := renderLine(p, v)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String(), nil
}

func renderLine(p model.Parameter, v interface{}) (string, error) {
	list, isList := v.([]interface{})
	if !isList {
		return renderScalar(p.Name, v)
	}

	parts := make([]string, 0, len(list))
	for _, elem := range list {
		s, err := renderScalar(p.Name, elem)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "), nil
}

func renderScalar(name string, v interface{}) (string, error) {
	switch x := v.(type) {
	case json.Number:
		// Preserves integer text exactly; no float round-trip.
		return x.String(), nil
	case string:
		return x, nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	default:
		return "", appErr.Newf(appErr.InputMalformed, "parameter %q has unsupported value type", name)
	}
}
