package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"procurement/internal/evaluator"
	"procurement/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlOrders = `
orders:
  - supplier: acme
    totalAmount: 9000
    estimatedDeliveryDays: 10
    standardWarranty: 12
  - supplier: globex
    totalAmount: "5000.00"
    estimatedDeliveryDays: 10
    standardWarranty: 12
    qualityCertification: true
    freeDelivery: true
`

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEvaluate_YAMLFileJSONOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlOrders), 0o644))

	out, err := runCommand(t, "", "--file", path, "--output", "json")
	require.NoError(t, err)

	var ranking models.Ranking
	require.NoError(t, json.Unmarshal([]byte(out), &ranking))
	require.NotNil(t, ranking.Best)
	assert.Equal(t, "globex", ranking.Best.Supplier)
	assert.InDelta(t, 50.83, ranking.Best.Score, 0.01)
	require.Len(t, ranking.Orders, 2)
	assert.Equal(t, "acme", ranking.Orders[1].Supplier)
}

func TestEvaluate_JSONStdinTable(t *testing.T) {
	stdin := `[{"supplier": "acme", "totalAmount": 9000}, {"supplier": "globex", "totalAmount": 1000}]`

	out, err := runCommand(t, stdin)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "RANK")
	assert.Contains(t, lines[1], "globex")
	assert.Contains(t, lines[2], "acme")
	assert.Contains(t, lines[1], "1000.00")
}

func TestEvaluate_Empty(t *testing.T) {
	out, err := runCommand(t, "[]")
	require.NoError(t, err)
	assert.Contains(t, out, "no orders to evaluate")

	out, err = runCommand(t, "", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"best": null, "orders": []}`, out)
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := runCommand(t, "[]", "--output", "xml")
	require.Error(t, err)

	_, err = runCommand(t, "supplier: acme")
	require.Error(t, err)

	_, err = runCommand(t, "", "--file", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = runCommand(t, "[{\"totalAmount\": \"abc\"}]")
	require.Error(t, err)

	_, err = runCommand(t, "- totalAmount: \"1e400\"", "-o", "json")
	require.ErrorIs(t, err, evaluator.ErrNotFinite)
}
