package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadPolicyDefaults(t *testing.T) {
	policy, err := LoadPolicy("")
	require.NoError(t, err)
	require.True(t, policy.TierLevelGate)
	require.NotEmpty(t, policy.Badges)
	require.Len(t, policy.Specializations, 2)
	require.Equal(t, 2, policy.SpecializationLevels[0].Level)

	var limited int
	for _, item := range policy.ShopItems {
		if item.Stock != nil {
			limited++
		}
	}
	require.Equal(t, 1, limited)
}

func TestParsePolicySortsLevels(t *testing.T) {
	policy, err := ParsePolicy([]byte(`{"specialization_levels":[
		{"level":3,"min_points":900,"min_skills":2,"title":"Adept"},
		{"level":2,"min_points":100,"min_skills":0}
	]}`))
	require.NoError(t, err)
	require.Equal(t, 2, policy.SpecializationLevels[0].Level)
	require.Equal(t, 3, policy.SpecializationLevels[1].Level)
}

func TestParsePolicyRejectsSchemaViolations(t *testing.T) {
	_, err := ParsePolicy([]byte(`{"specialization_levels":[],"shop_items":[
		{"code":"free","name":"Free Hat","category":"hat","price":0}
	]}`))
	require.Error(t, err)

	_, err = ParsePolicy([]byte(`{"shop_items":[]}`))
	require.Error(t, err)

	_, err = ParsePolicy([]byte(`not json`))
	require.Error(t, err)
}

func TestParsePolicyRejectsBrokenReferences(t *testing.T) {
	_, err := ParsePolicy([]byte(`{"specialization_levels":[],"specializations":[
		{"code":"data","name":"Data","skills":[
			{"code":"data-sql","name":"SQL","tier":2,"bonus_type":"points_multiplier","bonus_value":0.1,"requires":"data-missing"}
		]}
	]}`))
	require.ErrorContains(t, err, "unknown skill")

	_, err = ParsePolicy([]byte(`{"specialization_levels":[],"shop_items":[
		{"code":"gold","name":"Gold","category":"hat","price":10,"required_belt":"gold"}
	]}`))
	require.ErrorContains(t, err, "unknown belt")
}

func TestLoadPolicyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tier_level_gate":false,"specialization_levels":[{"level":2,"min_points":10,"min_skills":0}]}`), 0o600))

	policy, err := LoadPolicy(path)
	require.NoError(t, err)
	require.False(t, policy.TierLevelGate)
	require.Len(t, policy.SpecializationLevels, 1)

	_, err = LoadPolicy(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
