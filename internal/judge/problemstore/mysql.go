package problemstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"codearena/internal/common/db"
	"codearena/internal/judge/model"
	appErr "codearena/pkg/errors"
)

// MySQLStore reads problem data from MySQL.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore creates a store over an open database handle.
func NewMySQLStore(database *sql.DB) *MySQLStore {
	return &MySQLStore{db: database}
}

// storedSpec is the persisted JSON shape of a function spec. Type spellings
// are normalized on load so legacy aliases keep working.
type storedSpec struct {
	Name       string `json:"name"`
	Parameters []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"parameters"`
	ReturnType string `json:"return_type"`
}

// GetFunctionSpec implements Store.
func (s *MySQLStore) GetFunctionSpec(ctx context.Context, problemID int64) (model.FunctionSpec, error) {
	if problemID <= 0 {
		return model.FunctionSpec{}, appErr.ValidationError("problem_id", "required")
	}

	var raw sql.NullString
	query := "SELECT function_spec FROM problems WHERE id = ?"
	err := s.db.QueryRowContext(ctx, query, problemID).Scan(&raw)
	if db.IsNoRows(err) {
		return model.FunctionSpec{}, appErr.Newf(appErr.ProblemNotFound, "problem %d not found", problemID)
	}
	if err != nil {
		return model.FunctionSpec{}, appErr.Wrapf(err, appErr.DatabaseError, "load function spec failed")
	}
	if !raw.Valid || raw.String == "" {
		return model.FunctionSpec{}, appErr.Newf(appErr.FunctionSpecEmpty, "problem %d has no function spec", problemID)
	}

	var stored storedSpec
	if err := json.Unmarshal([]byte(raw.String), &stored); err != nil {
		return model.FunctionSpec{}, appErr.Wrapf(err, appErr.FunctionSpecEmpty, "decode function spec failed")
	}

	spec := model.FunctionSpec{Name: stored.Name}
	for _, p := range stored.Parameters {
		t, ok := model.NormalizeType(p.Type)
		if !ok {
			return model.FunctionSpec{}, appErr.Newf(appErr.TypeNotSupported, "parameter %q has unknown type %q", p.Name, p.Type)
		}
		spec.Parameters = append(spec.Parameters, model.Parameter{Name: p.Name, Type: t})
	}
	if stored.ReturnType != "" {
		t, ok := model.NormalizeType(stored.ReturnType)
		if !ok {
			return model.FunctionSpec{}, appErr.Newf(appErr.TypeNotSupported, "return type %q is unknown", stored.ReturnType)
		}
		spec.ReturnType = t
	}
	if err := spec.Validate(); err != nil {
		return model.FunctionSpec{}, appErr.Wrap(err, appErr.FunctionSpecEmpty)
	}
	return spec, nil
}

// GetTestCases implements Store.
func (s *MySQLStore) GetTestCases(ctx context.Context, problemID int64, includeHidden bool) ([]model.TestCase, error) {
	if problemID <= 0 {
		return nil, appErr.ValidationError("problem_id", "required")
	}

	query := "SELECT id, input_data, expected_output, is_hidden FROM test_cases WHERE problem_id = ?"
	args := []interface{}{problemID}
	if !includeHidden {
		query += " AND is_hidden = 0"
	}
	query += " ORDER BY sort_order, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "load test cases failed")
	}
	defer rows.Close()

	var tests []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.InputData, &tc.ExpectedOutput, &tc.IsHidden); err != nil {
			return nil, appErr.Wrapf(err, appErr.DatabaseError, "scan test case failed")
		}
		tests = append(tests, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "iterate test cases failed")
	}
	if len(tests) == 0 {
		return nil, appErr.Newf(appErr.TestCaseNotFound, "problem %d has no test cases", problemID)
	}
	return tests, nil
}

var _ Store = (*MySQLStore)(nil)
