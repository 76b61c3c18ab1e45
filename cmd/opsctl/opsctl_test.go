package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "opsdesk/internal/jwt_token"
)

const at = "2024-03-15T12:00:00Z"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--heuristics", "", "--at", at}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckSingleShipment(t *testing.T) {
	path := writeTemp(t, "shipment.json", `{}`)

	out, err := execute(t, "check", path)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "flagged", result["status"])
	assert.Equal(t, []any{"missing_documents", "hs_code", "missing_shipper", "missing_consignee", "missing_eta"}, result["rules"])
	assert.Equal(t, "2024-03-15T12:00:00.000Z", result["checkedAt"])
}

func TestCheckArrayStrict(t *testing.T) {
	path := writeTemp(t, "shipments.json", `[{}, {}]`)

	out, err := execute(t, "check", "--strict", path)
	require.ErrorIs(t, err, errFlagged)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Len(t, results, 2)
}

func TestCheckRejectsNonRecord(t *testing.T) {
	path := writeTemp(t, "bad.json", `"LAX"`)
	_, err := execute(t, "check", path)
	require.Error(t, err)
}

func TestScore(t *testing.T) {
	path := writeTemp(t, "deal.json", `{"name":"Acme","stage":"won","competitorCount":3}`)

	out, err := execute(t, "score", path)
	require.NoError(t, err)

	var score map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &score))
	assert.Equal(t, float64(100), score["score"])
}

func TestBriefMarkdown(t *testing.T) {
	path := writeTemp(t, "bundle.json", `{
		"shipments": [{"id":"2b0e7c52-5d0e-4c55-9b2a-3f1f3c1e9a01","reference":"SH-7"}],
		"deals": [{"name":"Acme","stage":"proposal","value":1000,"currency":"USD"}],
		"communications": [{
			"shipmentId":"2b0e7c52-5d0e-4c55-9b2a-3f1f3c1e9a01",
			"direction":"inbound","channel":"email","from":"buyer@acme.test",
			"subject":"Where is my cargo?","sentAt":"2024-03-10T09:00:00Z"
		}]
	}`)

	t.Run("daily", func(t *testing.T) {
		out, err := execute(t, "brief", "--format", "markdown", path)
		require.NoError(t, err)
		assert.Contains(t, out, "# Daily operations brief 2024-03-15")
		assert.Contains(t, out, "| Acme | proposal | USD 1,000 |")
		assert.Contains(t, out, "unanswered_message")
	})

	t.Run("single shipment by reference", func(t *testing.T) {
		out, err := execute(t, "brief", "--format", "json", "--shipment", "SH-7", path)
		require.NoError(t, err)
		var b map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &b))
		assert.Equal(t, "Shipment SH-7", b["title"])
	})

	t.Run("unknown shipment", func(t *testing.T) {
		_, err := execute(t, "brief", "--shipment", "SH-404", path)
		require.ErrorContains(t, err, "not found in bundle")
	})
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key")

	out, err := execute(t, "token", "--operator", "ops@example.test")
	require.NoError(t, err)

	svc := jwttoken.NewService("test-signing-key", "opsdesk", "opsdesk-api")
	claims, err := svc.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops@example.test", claims.Operator)
}

func TestTokenRequiresKey(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "")
	_, err := execute(t, "token", "--operator", "ops@example.test")
	require.ErrorContains(t, err, "JWT_SIGNING_KEY")
}
