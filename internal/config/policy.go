package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/gema-progression/internal/gamification"
)

//go:embed policy.schema.json
var policySchema []byte

//go:embed default_policy.json
var defaultPolicy []byte

const policySchemaURL = "policy.schema.json"

// Policy is the product-policy data of the progression engine: specialization
// level thresholds, skill-tree gating and the seed catalogs.
type Policy struct {
	SpecializationLevels []gamification.LevelThreshold `json:"specialization_levels"`
	TierLevelGate        bool                          `json:"tier_level_gate"`
	Badges               []BadgePolicy                 `json:"badges"`
	Specializations      []SpecializationPolicy        `json:"specializations"`
	ShopItems            []ShopItemPolicy              `json:"shop_items"`
}

// BadgePolicy seeds one badge.
type BadgePolicy struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Criteria    string `json:"criteria"`
	Icon        string `json:"icon"`
}

// SpecializationPolicy seeds a specialization and its skill tree.
type SpecializationPolicy struct {
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Skills      []SkillPolicy `json:"skills"`
}

// SkillPolicy seeds one skill. Requires names the prerequisite skill code.
type SkillPolicy struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Tier        int     `json:"tier"`
	BonusType   string  `json:"bonus_type"`
	BonusValue  float64 `json:"bonus_value"`
	Requires    string  `json:"requires"`
}

// ShopItemPolicy seeds one shop item. A nil stock is unlimited.
type ShopItemPolicy struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Price        int64  `json:"price"`
	RequiredBelt string `json:"required_belt"`
	Rarity       string `json:"rarity"`
	Stock        *int   `json:"stock"`
	Active       *bool  `json:"active"`
}

// LoadPolicy reads the policy file at path, or the built-in policy when path is empty.
func LoadPolicy(path string) (Policy, error) {
	data := defaultPolicy
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Policy{}, fmt.Errorf("failed to read policy file: %w", err)
		}
		data = raw
	}
	return ParsePolicy(data)
}

// ParsePolicy validates data against the policy schema and decodes it.
func ParsePolicy(data []byte) (Policy, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(policySchemaURL, bytes.NewReader(policySchema)); err != nil {
		return Policy{}, fmt.Errorf("failed to load policy schema: %w", err)
	}
	schema, err := compiler.Compile(policySchemaURL)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to compile policy schema: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var document interface{}
	if err := decoder.Decode(&document); err != nil {
		return Policy{}, fmt.Errorf("policy is not valid json: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return Policy{}, fmt.Errorf("policy does not match schema: %w", err)
	}

	var policy Policy
	if err := json.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("failed to decode policy: %w", err)
	}
	gamification.SortLevels(policy.SpecializationLevels)

	if err := policy.validateReferences(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

func (p Policy) validateReferences() error {
	seen := map[int]bool{}
	for _, level := range p.SpecializationLevels {
		if seen[level.Level] {
			return fmt.Errorf("specialization level %d defined twice", level.Level)
		}
		seen[level.Level] = true
	}

	for _, specialization := range p.Specializations {
		codes := map[string]bool{}
		for _, skill := range specialization.Skills {
			codes[skill.Code] = true
		}
		for _, skill := range specialization.Skills {
			if skill.Requires != "" && !codes[skill.Requires] {
				return fmt.Errorf("skill %s requires unknown skill %s in %s", skill.Code, skill.Requires, specialization.Code)
			}
		}
	}

	for _, item := range p.ShopItems {
		if _, err := gamification.ParseBelt(item.RequiredBelt); err != nil {
			return fmt.Errorf("shop item %s: %w", item.Code, err)
		}
	}
	return nil
}
